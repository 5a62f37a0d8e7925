package sales

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleInput captures the settlement details required to convert a vehicle.
// Customer fields are optional overrides merged on top of whatever the
// vehicle already carries.
type SaleInput struct {
	SaleAmount       decimal.Decimal     `json:"saleAmount"`
	SaleDate         string              `json:"saleDate"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	PaymentReference string              `json:"paymentReference"`
	CustomerName     string              `json:"customerName,omitempty"`
	CustomerPhone    string              `json:"customerPhone,omitempty"`
	CustomerEmail    string              `json:"customerEmail,omitempty"`
}

// ConvertInput bundles the sale details with an optional trade-in.
type ConvertInput struct {
	Sale    SaleInput
	TradeIn *tradeins.TradeInInput
}

// ConvertResult reports the ids produced by a successful conversion.
type ConvertResult struct {
	SoldVehicleID uuid.UUID  `json:"soldVehicleId"`
	TradeInID     *uuid.UUID `json:"tradeInId,omitempty"`
}

// SoldVehicleUpdateInput captures corrective edits to a sold record.
type SoldVehicleUpdateInput struct {
	StockNumber      *string          `json:"stockNumber,omitempty"`
	Color            *string          `json:"color,omitempty"`
	CustomerName     *string          `json:"customerName,omitempty"`
	CustomerPhone    *string          `json:"customerPhone,omitempty"`
	CustomerEmail    *string          `json:"customerEmail,omitempty"`
	SaleAmount       *decimal.Decimal `json:"saleAmount,omitempty"`
	SaleDate         *string          `json:"saleDate,omitempty"`
	PaymentMethod    *string          `json:"paymentMethod,omitempty"`
	PaymentReference *string          `json:"paymentReference,omitempty"`
}

// ListParams bundle pagination inputs for the sold-vehicle list.
type ListParams struct {
	Limit      int
	Cursor     string
	SearchTerm string
}

// SoldVehicleList wraps a page of sold vehicles plus the next page cursor.
type SoldVehicleList struct {
	SoldVehicles []models.SoldVehicle `json:"soldVehicles"`
	NextCursor   string               `json:"nextCursor,omitempty"`
}

// SoldVehicleView is the wire representation of a sold vehicle.
type SoldVehicleView struct {
	ID               uuid.UUID           `json:"id"`
	StockNumber      string              `json:"stockNumber"`
	VIN              string              `json:"vin"`
	Year             int                 `json:"year"`
	Make             string              `json:"make"`
	Model            string              `json:"model"`
	Trim             string              `json:"trim,omitempty"`
	Color            string              `json:"color,omitempty"`
	FleetCompany     string              `json:"fleetCompany,omitempty"`
	OperationCompany string              `json:"operationCompany,omitempty"`
	DateAdded        time.Time           `json:"dateAdded"`
	InStockDate      *time.Time          `json:"inStockDate,omitempty"`
	CustomerName     string              `json:"customerName,omitempty"`
	CustomerPhone    string              `json:"customerPhone,omitempty"`
	CustomerEmail    string              `json:"customerEmail,omitempty"`
	SaleAmount       decimal.Decimal     `json:"saleAmount"`
	SaleDate         string              `json:"saleDate"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	PaymentReference string              `json:"paymentReference"`
	TradeInID        *uuid.UUID          `json:"tradeInId,omitempty"`
	SoldAt           time.Time           `json:"soldAt"`
}

// NewSoldVehicleView maps a persisted sold vehicle into its wire shape.
func NewSoldVehicleView(s models.SoldVehicle) SoldVehicleView {
	return SoldVehicleView{
		ID:               s.ID,
		StockNumber:      s.StockNumber,
		VIN:              s.VIN,
		Year:             s.Year,
		Make:             s.Make,
		Model:            s.Model,
		Trim:             s.Trim,
		Color:            s.Color,
		FleetCompany:     s.FleetCompany,
		OperationCompany: s.OperationCompany,
		DateAdded:        s.DateAdded,
		InStockDate:      s.InStockDate,
		CustomerName:     s.Customer.Name,
		CustomerPhone:    s.Customer.Phone,
		CustomerEmail:    s.Customer.Email,
		SaleAmount:       s.Sale.SaleAmount,
		SaleDate:         s.Sale.SaleDate,
		PaymentMethod:    s.Sale.PaymentMethod,
		PaymentReference: s.Sale.PaymentReference,
		TradeInID:        s.TradeInID,
		SoldAt:           s.SoldAt,
	}
}

// NewSoldVehicleViews maps a slice of sold vehicles into wire shapes.
func NewSoldVehicleViews(sold []models.SoldVehicle) []SoldVehicleView {
	views := make([]SoldVehicleView, 0, len(sold))
	for _, s := range sold {
		views = append(views, NewSoldVehicleView(s))
	}
	return views
}
