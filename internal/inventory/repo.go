package inventory

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

// NewRepository builds a vehicle repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) FindByVIN(ctx context.Context, value string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("UPPER(vin) = ?", vin.Normalize(value)).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.Vehicle, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.limit)
	normalized := pagination.NormalizeLimit(params.limit)

	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if params.filters.Status != nil {
		query = query.Where("status = ?", *params.filters.Status)
	}
	if params.filters.Query != "" {
		like := "%" + params.filters.Query + "%"
		query = query.Where(
			"vin LIKE ? OR stock_number LIKE ? OR make LIKE ? OR model LIKE ?",
			like, like, like, like,
		)
	}
	if params.cursor != nil {
		query = query.Where("(date_added, id) < (?, ?)", params.cursor.CreatedAt, params.cursor.ID)
	}

	var vehicles []models.Vehicle
	err := query.
		Order("date_added DESC").
		Order("id DESC").
		Limit(limit).
		Find(&vehicles).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(vehicles) > normalized {
		vehicles = vehicles[:normalized]
		last := vehicles[len(vehicles)-1]
		next = &pagination.Cursor{CreatedAt: last.DateAdded, ID: last.ID}
	}
	return vehicles, next, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.WithContext(ctx).
		Order("date_added ASC").
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
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

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
