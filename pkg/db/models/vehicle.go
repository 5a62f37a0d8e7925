package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// CustomerInfo is the buyer contact block carried on active and sold vehicles.
type CustomerInfo struct {
	Name  string `gorm:"column:customer_name"`
	Phone string `gorm:"column:customer_phone"`
	Email string `gorm:"column:customer_email"`
}

// Vehicle is an active-inventory record. Once sold it is moved into the
// sold_vehicles table and deleted here; the two sets never overlap.
type Vehicle struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StockNumber      string              `gorm:"column:stock_number"`
	VIN              string              `gorm:"column:vin;size:17;index"`
	Year             int                 `gorm:"column:year"`
	Make             string              `gorm:"column:make;not null"`
	Model            string              `gorm:"column:model;not null"`
	Trim             string              `gorm:"column:trim"`
	Color            string              `gorm:"column:color"`
	FleetCompany     string              `gorm:"column:fleet_company"`
	OperationCompany string              `gorm:"column:operation_company"`
	Status           enums.VehicleStatus `gorm:"column:status;not null"`
	DateAdded        time.Time           `gorm:"column:date_added;autoCreateTime"`
	InStockDate      *time.Time          `gorm:"column:in_stock_date"`
	PickupDate       *string             `gorm:"column:pickup_date"`
	PickupTime       *string             `gorm:"column:pickup_time"`
	Customer         CustomerInfo        `gorm:"embedded"`
	TradeInID        *uuid.UUID          `gorm:"column:trade_in_id;type:uuid"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = enums.VehicleStatusInTransit
	}
	return nil
}
