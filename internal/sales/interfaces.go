package sales

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the sold-vehicle set.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sold *models.SoldVehicle) (*models.SoldVehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SoldVehicle, error)
	FindByVIN(ctx context.Context, vin string) (*models.SoldVehicle, error)
	List(ctx context.Context, params listQuery) ([]models.SoldVehicle, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.SoldVehicle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type listQuery struct {
	limit  int
	cursor *pagination.Cursor
	search string
}
