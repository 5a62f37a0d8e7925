package documents

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// DocumentInput captures the metadata recorded when a file is attached to
// a vehicle. The binary itself is handled by external storage; only the
// locator travels through here.
type DocumentInput struct {
	VehicleID  uuid.UUID `json:"vehicleId"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	StorageKey string    `json:"storageKey"`
}

// DocumentView is the wire representation of a document metadata row.
type DocumentView struct {
	ID         uuid.UUID `json:"id"`
	VehicleID  uuid.UUID `json:"vehicleId"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	UploadDate time.Time `json:"uploadDate"`
	StorageKey string    `json:"storageKey,omitempty"`
}

// NewDocumentView maps a persisted document into its wire representation.
func NewDocumentView(d models.Document) DocumentView {
	return DocumentView{
		ID:         d.ID,
		VehicleID:  d.VehicleID,
		FileName:   d.FileName,
		FileSize:   d.FileSize,
		UploadDate: d.UploadDate,
		StorageKey: d.StorageKey,
	}
}

// NewDocumentViews maps a slice of documents into wire representations.
func NewDocumentViews(docs []models.Document) []DocumentView {
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, NewDocumentView(d))
	}
	return views
}
