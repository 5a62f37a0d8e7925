package tradeins

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

// NewRepository builds a trade-in repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tradeIn *models.TradeIn) (*models.TradeIn, error) {
	if err := r.db.WithContext(ctx).Create(tradeIn).Error; err != nil {
		return nil, err
	}
	return tradeIn, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TradeIn, error) {
	var tradeIn models.TradeIn
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tradeIn).Error
	if err != nil {
		return nil, err
	}
	return &tradeIn, nil
}

func (r *repository) FindByVIN(ctx context.Context, value string) (*models.TradeIn, error) {
	var tradeIn models.TradeIn
	err := r.db.WithContext(ctx).
		Where("UPPER(vin) = ?", vin.Normalize(value)).
		First(&tradeIn).Error
	if err != nil {
		return nil, err
	}
	return &tradeIn, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.TradeIn, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.limit)
	normalized := pagination.NormalizeLimit(params.limit)

	query := r.db.WithContext(ctx).Model(&models.TradeIn{})
	if params.pickedUp != nil {
		query = query.Where("picked_up = ?", *params.pickedUp)
	}
	if params.search != "" {
		like := "%" + params.search + "%"
		query = query.Where("vin LIKE ? OR make LIKE ? OR model LIKE ?", like, like, like)
	}
	if params.cursor != nil {
		query = query.Where("(date_added, id) < (?, ?)", params.cursor.CreatedAt, params.cursor.ID)
	}

	var tradeIns []models.TradeIn
	err := query.
		Order("date_added DESC").
		Order("id DESC").
		Limit(limit).
		Find(&tradeIns).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(tradeIns) > normalized {
		tradeIns = tradeIns[:normalized]
		last := tradeIns[len(tradeIns)-1]
		next = &pagination.Cursor{CreatedAt: last.DateAdded, ID: last.ID}
	}
	return tradeIns, next, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.TradeIn, error) {
	var tradeIns []models.TradeIn
	err := r.db.WithContext(ctx).
		Order("date_added ASC").
		Find(&tradeIns).Error
	if err != nil {
		return nil, err
	}
	return tradeIns, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.TradeIn{}).
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
		Delete(&models.TradeIn{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
