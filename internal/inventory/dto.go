package inventory

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// VehicleInput captures the writable fields when creating a vehicle.
type VehicleInput struct {
	StockNumber      string              `json:"stockNumber"`
	VIN              string              `json:"vin"`
	Year             int                 `json:"year"`
	Make             string              `json:"make"`
	Model            string              `json:"model"`
	Trim             string              `json:"trim"`
	Color            string              `json:"color"`
	FleetCompany     string              `json:"fleetCompany"`
	OperationCompany string              `json:"operationCompany"`
	Status           enums.VehicleStatus `json:"status"`
	CustomerName     string              `json:"customerName"`
	CustomerPhone    string              `json:"customerPhone"`
	CustomerEmail    string              `json:"customerEmail"`
}

// VehicleUpdateInput captures partial edits to a vehicle. Status is
// deliberately absent: status only moves through ChangeStatus.
type VehicleUpdateInput struct {
	StockNumber      *string `json:"stockNumber,omitempty"`
	VIN              *string `json:"vin,omitempty"`
	Year             *int    `json:"year,omitempty"`
	Make             *string `json:"make,omitempty"`
	Model            *string `json:"model,omitempty"`
	Trim             *string `json:"trim,omitempty"`
	Color            *string `json:"color,omitempty"`
	FleetCompany     *string `json:"fleetCompany,omitempty"`
	OperationCompany *string `json:"operationCompany,omitempty"`
	CustomerName     *string `json:"customerName,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
}

// StatusChangeInput carries a requested status plus the pickup scheduling
// details that are only meaningful when the target is pickup-scheduled.
type StatusChangeInput struct {
	Status     enums.VehicleStatus `json:"status"`
	PickupDate string              `json:"pickupDate,omitempty"`
	PickupTime string              `json:"pickupTime,omitempty"`
}

// ListFilters describe the supported filter knobs for the vehicle list.
type ListFilters struct {
	Status *enums.VehicleStatus
	Query  string
}

// ListParams bundle pagination with the vehicle list filters.
type ListParams struct {
	Limit   int
	Cursor  string
	Filters ListFilters
}

// VehicleList wraps a page of vehicles plus the next page cursor.
type VehicleList struct {
	Vehicles   []models.Vehicle `json:"vehicles"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// VehicleView is the wire representation of an active vehicle.
type VehicleView struct {
	ID               uuid.UUID           `json:"id"`
	StockNumber      string              `json:"stockNumber"`
	VIN              string              `json:"vin"`
	Year             int                 `json:"year"`
	Make             string              `json:"make"`
	Model            string              `json:"model"`
	Trim             string              `json:"trim"`
	Color            string              `json:"color"`
	FleetCompany     string              `json:"fleetCompany"`
	OperationCompany string              `json:"operationCompany"`
	Status           enums.VehicleStatus `json:"status"`
	DateAdded        time.Time           `json:"dateAdded"`
	InStockDate      *time.Time          `json:"inStockDate,omitempty"`
	PickupDate       *string             `json:"pickupDate,omitempty"`
	PickupTime       *string             `json:"pickupTime,omitempty"`
	CustomerName     string              `json:"customerName,omitempty"`
	CustomerPhone    string              `json:"customerPhone,omitempty"`
	CustomerEmail    string              `json:"customerEmail,omitempty"`
	TradeInID        *uuid.UUID          `json:"tradeInId,omitempty"`
}

// NewVehicleView maps a persisted vehicle into its wire representation.
func NewVehicleView(v models.Vehicle) VehicleView {
	return VehicleView{
		ID:               v.ID,
		StockNumber:      v.StockNumber,
		VIN:              v.VIN,
		Year:             v.Year,
		Make:             v.Make,
		Model:            v.Model,
		Trim:             v.Trim,
		Color:            v.Color,
		FleetCompany:     v.FleetCompany,
		OperationCompany: v.OperationCompany,
		Status:           v.Status,
		DateAdded:        v.DateAdded,
		InStockDate:      v.InStockDate,
		PickupDate:       v.PickupDate,
		PickupTime:       v.PickupTime,
		CustomerName:     v.Customer.Name,
		CustomerPhone:    v.Customer.Phone,
		CustomerEmail:    v.Customer.Email,
		TradeInID:        v.TradeInID,
	}
}

// NewVehicleViews maps a slice of vehicles into wire representations.
func NewVehicleViews(vehicles []models.Vehicle) []VehicleView {
	views := make([]VehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		views = append(views, NewVehicleView(v))
	}
	return views
}
