package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TradeIn is a fleet-return vehicle captured directly or spawned by a sale.
// It has no natural key: the VIN is optional and uniqueness is not enforced.
type TradeIn struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	VIN          string     `gorm:"column:vin;size:17;index"`
	Year         int        `gorm:"column:year"`
	Make         string     `gorm:"column:make;not null"`
	Model        string     `gorm:"column:model;not null"`
	Trim         string     `gorm:"column:trim"`
	Color        string     `gorm:"column:color"`
	Mileage      *int       `gorm:"column:mileage"`
	Notes        string     `gorm:"column:notes"`
	PickedUp     bool       `gorm:"column:picked_up;not null;default:false"`
	PickedUpDate *time.Time `gorm:"column:picked_up_date"`
	DateAdded    time.Time  `gorm:"column:date_added;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (TradeIn) TableName() string {
	return "trade_ins"
}

func (t *TradeIn) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
