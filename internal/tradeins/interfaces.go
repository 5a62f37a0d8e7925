package tradeins

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for trade-in records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tradeIn *models.TradeIn) (*models.TradeIn, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TradeIn, error)
	FindByVIN(ctx context.Context, vin string) (*models.TradeIn, error)
	List(ctx context.Context, params listQuery) ([]models.TradeIn, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.TradeIn, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listQuery struct {
	limit    int
	cursor   *pagination.Cursor
	pickedUp *bool
	search   string
}
