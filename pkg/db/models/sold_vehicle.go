package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// SaleInfo extends the customer block with settlement details captured at
// conversion time.
type SaleInfo struct {
	SaleAmount       decimal.Decimal     `gorm:"column:sale_amount;type:numeric(12,2)"`
	SaleDate         string              `gorm:"column:sale_date"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method"`
	PaymentReference string              `gorm:"column:payment_reference"`
}

// SoldVehicle freezes a Vehicle at the moment of sale. It keeps the original
// vehicle id so document metadata keyed by that id keeps resolving, and it is
// never promoted back into active inventory.
type SoldVehicle struct {
	ID               uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	StockNumber      string       `gorm:"column:stock_number"`
	VIN              string       `gorm:"column:vin;size:17;index"`
	Year             int          `gorm:"column:year"`
	Make             string       `gorm:"column:make;not null"`
	Model            string       `gorm:"column:model;not null"`
	Trim             string       `gorm:"column:trim"`
	Color            string       `gorm:"column:color"`
	FleetCompany     string       `gorm:"column:fleet_company"`
	OperationCompany string       `gorm:"column:operation_company"`
	DateAdded        time.Time    `gorm:"column:date_added"`
	InStockDate      *time.Time   `gorm:"column:in_stock_date"`
	Customer         CustomerInfo `gorm:"embedded"`
	Sale             SaleInfo     `gorm:"embedded"`
	TradeInID        *uuid.UUID   `gorm:"column:trade_in_id;type:uuid"`
	SoldAt           time.Time    `gorm:"column:sold_at;autoCreateTime"`
	UpdatedAt        time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (SoldVehicle) TableName() string {
	return "sold_vehicles"
}

func (s *SoldVehicle) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
