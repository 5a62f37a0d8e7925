package sales

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/vin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sold-vehicle repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sold *models.SoldVehicle) (*models.SoldVehicle, error) {
	if err := r.db.WithContext(ctx).Create(sold).Error; err != nil {
		return nil, err
	}
	return sold, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SoldVehicle, error) {
	var sold models.SoldVehicle
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sold).Error
	if err != nil {
		return nil, err
	}
	return &sold, nil
}

func (r *repository) FindByVIN(ctx context.Context, value string) (*models.SoldVehicle, error) {
	var sold models.SoldVehicle
	err := r.db.WithContext(ctx).
		Where("UPPER(vin) = ?", vin.Normalize(value)).
		First(&sold).Error
	if err != nil {
		return nil, err
	}
	return &sold, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.SoldVehicle, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.limit)
	normalized := pagination.NormalizeLimit(params.limit)

	query := r.db.WithContext(ctx).Model(&models.SoldVehicle{})
	if params.search != "" {
		like := "%" + params.search + "%"
		query = query.Where(
			"vin LIKE ? OR stock_number LIKE ? OR make LIKE ? OR model LIKE ? OR customer_name LIKE ?",
			like, like, like, like, like,
		)
	}
	if params.cursor != nil {
		query = query.Where("(sold_at, id) < (?, ?)", params.cursor.CreatedAt, params.cursor.ID)
	}

	var sold []models.SoldVehicle
	err := query.
		Order("sold_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&sold).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(sold) > normalized {
		sold = sold[:normalized]
		last := sold[len(sold)-1]
		next = &pagination.Cursor{CreatedAt: last.SoldAt, ID: last.ID}
	}
	return sold, next, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.SoldVehicle, error) {
	var sold []models.SoldVehicle
	err := r.db.WithContext(ctx).
		Order("sold_at ASC").
		Find(&sold).Error
	if err != nil {
		return nil, err
	}
	return sold, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.SoldVehicle{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
