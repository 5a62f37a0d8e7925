package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/metrics"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/vin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the active-inventory operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*VehicleList, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	Create(ctx context.Context, input VehicleInput) (*models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, input VehicleUpdateInput) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, input StatusChangeInput) (*models.Vehicle, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.CoreMetrics
	now     func() time.Time
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger, core *metrics.CoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		logg:    logg,
		metrics: core,
		now:     time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*VehicleList, error) {
	query := listQuery{
		limit:   params.Limit,
		filters: params.Filters,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	vehicles, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	result := &VehicleList{Vehicles: vehicles}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) Create(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "make and model are required")
	}
	if input.Status != "" && (!input.Status.IsValid() || input.Status.IsTerminal()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid initial status %q", input.Status))
	}

	normalizedVIN := vin.Normalize(input.VIN)
	if normalizedVIN != "" {
		if err := vin.Validate(normalizedVIN); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vin")
		}
		// Duplicate VINs are advisory here: the UI surfaces the warning and
		// the import path is where uniqueness is actually reconciled.
		if existing, err := s.repo.FindByVIN(ctx, normalizedVIN); err == nil && existing != nil {
			dupCtx := s.logg.WithVehicleID(ctx, existing.ID.String())
			s.logg.Warn(s.logg.WithField(dupCtx, "vin", normalizedVIN), "creating vehicle with a VIN already in inventory")
		}
	}

	vehicle := &models.Vehicle{
		StockNumber:      strings.TrimSpace(input.StockNumber),
		VIN:              normalizedVIN,
		Year:             input.Year,
		Make:             strings.TrimSpace(input.Make),
		Model:            strings.TrimSpace(input.Model),
		Trim:             strings.TrimSpace(input.Trim),
		Color:            strings.TrimSpace(input.Color),
		FleetCompany:     strings.TrimSpace(input.FleetCompany),
		OperationCompany: strings.TrimSpace(input.OperationCompany),
		Status:           input.Status,
		Customer: models.CustomerInfo{
			Name:  strings.TrimSpace(input.CustomerName),
			Phone: strings.TrimSpace(input.CustomerPhone),
			Email: strings.TrimSpace(input.CustomerEmail),
		},
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}

	s.logg.Info(s.logg.WithVehicleID(ctx, created.ID.String()), "vehicle created")
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input VehicleUpdateInput) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setString("stock_number", input.StockNumber)
	setString("make", input.Make)
	setString("model", input.Model)
	setString("trim", input.Trim)
	setString("color", input.Color)
	setString("fleet_company", input.FleetCompany)
	setString("operation_company", input.OperationCompany)
	setString("customer_name", input.CustomerName)
	setString("customer_phone", input.CustomerPhone)
	setString("customer_email", input.CustomerEmail)
	if input.Year != nil {
		updates["year"] = *input.Year
	}
	if input.VIN != nil {
		normalized := vin.Normalize(*input.VIN)
		if normalized != "" {
			if err := vin.Validate(normalized); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vin")
			}
		}
		updates["vin"] = normalized
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	s.logg.Info(s.logg.WithVehicleID(ctx, id.String()), "vehicle deleted")
	return nil
}

func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, input StatusChangeInput) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := PlanTransition(vehicle, input, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return vehicle, nil
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply status change")
	}

	s.metrics.IncStatusChange(input.Status.String())
	statusCtx := s.logg.WithFields(s.logg.WithVehicleID(ctx, id.String()), map[string]any{
		"from": vehicle.Status,
		"to":   input.Status,
	})
	s.logg.Info(statusCtx, "vehicle status changed")

	return s.Get(ctx, id)
}
