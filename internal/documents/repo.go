package documents

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for document metadata.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Document, error)
	ListAll(ctx context.Context) ([]models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a document repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("upload_date DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Order("upload_date ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
