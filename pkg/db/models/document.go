package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document holds metadata for a file attached to a vehicle. The binary
// payload lives in external storage behind StorageKey; deleting a vehicle
// does not cascade here, so rows may reference ids that no longer resolve.
type Document struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VehicleID  uuid.UUID `gorm:"column:vehicle_id;type:uuid;index;not null"`
	FileName   string    `gorm:"column:file_name;not null"`
	FileSize   int64     `gorm:"column:file_size;not null;default:0"`
	UploadDate time.Time `gorm:"column:upload_date;autoCreateTime"`
	StorageKey string    `gorm:"column:storage_key"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
