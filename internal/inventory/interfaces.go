package inventory

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for active-inventory vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByVIN(ctx context.Context, vin string) (*models.Vehicle, error)
	List(ctx context.Context, params listQuery) ([]models.Vehicle, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listQuery struct {
	limit   int
	cursor  *pagination.Cursor
	filters ListFilters
}
