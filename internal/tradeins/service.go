package tradeins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/vin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines trade-in operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*TradeInList, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TradeIn, error)
	Create(ctx context.Context, input TradeInInput) (*models.TradeIn, error)
	Update(ctx context.Context, id uuid.UUID, input TradeInUpdateInput) (*models.TradeIn, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPickedUp(ctx context.Context, id uuid.UUID, pickedUp bool) (*models.TradeIn, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a trade-in service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trade-in repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// ValidateInput checks the fields required on a direct trade-in create. A
// walk-in return may be recorded before its paperwork arrives, so only make
// and model are mandatory here and the VIN is checked when present.
func ValidateInput(input TradeInInput) error {
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in make and model are required")
	}
	if normalized := vin.Normalize(input.VIN); normalized != "" {
		if err := vin.Validate(normalized); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trade-in vin")
		}
	}
	if input.Mileage != nil && *input.Mileage < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in mileage cannot be negative")
	}
	return nil
}

// ValidateConversionInput checks the stricter field set a trade-in must carry
// when it is captured as part of a sale: vin, year, make, model, and color,
// with mileage staying optional.
func ValidateConversionInput(input TradeInInput) error {
	if err := ValidateInput(input); err != nil {
		return err
	}
	if vin.Normalize(input.VIN) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in vin is required")
	}
	if input.Year == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in year is required")
	}
	if strings.TrimSpace(input.Color) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in color is required")
	}
	return nil
}

// BuildModel converts a validated input into its persistence shape.
func BuildModel(input TradeInInput) *models.TradeIn {
	return &models.TradeIn{
		VIN:     vin.Normalize(input.VIN),
		Year:    input.Year,
		Make:    strings.TrimSpace(input.Make),
		Model:   strings.TrimSpace(input.Model),
		Trim:    strings.TrimSpace(input.Trim),
		Color:   strings.TrimSpace(input.Color),
		Mileage: input.Mileage,
		Notes:   strings.TrimSpace(input.Notes),
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*TradeInList, error) {
	query := listQuery{
		limit:    params.Limit,
		pickedUp: params.PickedUp,
		search:   params.SearchTerm,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	tradeIns, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trade-ins")
	}

	result := &TradeInList{TradeIns: tradeIns}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.TradeIn, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade-in id required")
	}
	tradeIn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trade-in not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trade-in")
	}
	return tradeIn, nil
}

func (s *service) Create(ctx context.Context, input TradeInInput) (*models.TradeIn, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, BuildModel(input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trade-in")
	}
	s.logg.Info(s.logg.WithField(ctx, "trade_in_id", created.ID.String()), "trade-in recorded")
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input TradeInUpdateInput) (*models.TradeIn, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade-in id required")
	}

	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setString("make", input.Make)
	setString("model", input.Model)
	setString("trim", input.Trim)
	setString("color", input.Color)
	setString("notes", input.Notes)
	if input.Year != nil {
		updates["year"] = *input.Year
	}
	if input.Mileage != nil {
		if *input.Mileage < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade-in mileage cannot be negative")
		}
		updates["mileage"] = *input.Mileage
	}
	if input.VIN != nil {
		normalized := vin.Normalize(*input.VIN)
		if normalized != "" {
			if err := vin.Validate(normalized); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trade-in vin")
			}
		}
		updates["vin"] = normalized
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trade-in not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trade-in")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade-in id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trade-in not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete trade-in")
	}
	return nil
}

// SetPickedUp toggles the pickup flag, stamping the pickup date when set and
// clearing it when unset.
func (s *service) SetPickedUp(ctx context.Context, id uuid.UUID, pickedUp bool) (*models.TradeIn, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade-in id required")
	}

	updates := map[string]any{"picked_up": pickedUp}
	if pickedUp {
		updates["picked_up_date"] = s.now().UTC()
	} else {
		updates["picked_up_date"] = nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trade-in not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trade-in pickup state")
	}
	return s.Get(ctx, id)
}
