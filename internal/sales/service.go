package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/metrics"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines sold-vehicle operations, chiefly the conversion that
// moves a vehicle out of active inventory.
type Service interface {
	Convert(ctx context.Context, vehicleID uuid.UUID, input ConvertInput) (*ConvertResult, error)
	List(ctx context.Context, params ListParams) (*SoldVehicleList, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SoldVehicle, error)
	Update(ctx context.Context, id uuid.UUID, input SoldVehicleUpdateInput) (*models.SoldVehicle, error)
}

type service struct {
	repo     Repository
	vehicles inventory.Repository
	tradeIns tradeins.Repository
	tx       txRunner
	logg     *logger.Logger
	metrics  *metrics.CoreMetrics
}

// NewService builds a sales service with the required dependencies.
func NewService(
	repo Repository,
	vehicles inventory.Repository,
	tradeIns tradeins.Repository,
	tx txRunner,
	logg *logger.Logger,
	core *metrics.CoreMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tradeIns == nil {
		return nil, fmt.Errorf("trade-in repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		vehicles: vehicles,
		tradeIns: tradeIns,
		tx:       tx,
		logg:     logg,
		metrics:  core,
	}, nil
}

func validateSale(input SaleInput) error {
	if !input.SaleAmount.GreaterThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "saleAmount must be greater than zero")
	}
	if strings.TrimSpace(input.SaleDate) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "saleDate is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if strings.TrimSpace(input.PaymentReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "paymentReference is required")
	}
	return nil
}

// Convert moves a vehicle into the sold set, optionally recording a trade-in,
// as one transaction. Either every write lands or none do; a second call for
// the same vehicle id fails with not-found because the active record is gone.
func (s *service) Convert(ctx context.Context, vehicleID uuid.UUID, input ConvertInput) (*ConvertResult, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if err := validateSale(input.Sale); err != nil {
		return nil, err
	}
	if input.TradeIn != nil {
		if err := tradeins.ValidateConversionInput(*input.TradeIn); err != nil {
			return nil, err
		}
	}

	var result ConvertResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		vehicles := s.vehicles.WithTx(tx)
		soldRepo := s.repo.WithTx(tx)
		tradeInRepo := s.tradeIns.WithTx(tx)

		vehicle, err := vehicles.FindByID(ctx, vehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found or already sold")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
		}

		customer := vehicle.Customer
		if name := strings.TrimSpace(input.Sale.CustomerName); name != "" {
			customer.Name = name
		}
		if phone := strings.TrimSpace(input.Sale.CustomerPhone); phone != "" {
			customer.Phone = phone
		}
		if email := strings.TrimSpace(input.Sale.CustomerEmail); email != "" {
			customer.Email = email
		}

		sold := &models.SoldVehicle{
			ID:               vehicle.ID,
			StockNumber:      vehicle.StockNumber,
			VIN:              vehicle.VIN,
			Year:             vehicle.Year,
			Make:             vehicle.Make,
			Model:            vehicle.Model,
			Trim:             vehicle.Trim,
			Color:            vehicle.Color,
			FleetCompany:     vehicle.FleetCompany,
			OperationCompany: vehicle.OperationCompany,
			DateAdded:        vehicle.DateAdded,
			InStockDate:      vehicle.InStockDate,
			Customer:         customer,
			Sale: models.SaleInfo{
				SaleAmount:       input.Sale.SaleAmount,
				SaleDate:         strings.TrimSpace(input.Sale.SaleDate),
				PaymentMethod:    input.Sale.PaymentMethod,
				PaymentReference: strings.TrimSpace(input.Sale.PaymentReference),
			},
		}

		if input.TradeIn != nil {
			tradeIn, err := tradeInRepo.Create(ctx, tradeins.BuildModel(*input.TradeIn))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trade-in")
			}
			sold.TradeInID = &tradeIn.ID
			result.TradeInID = &tradeIn.ID
		}

		if _, err := soldRepo.Create(ctx, sold); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sold vehicle")
		}

		if err := vehicles.Delete(ctx, vehicle.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove vehicle from active inventory")
		}

		result.SoldVehicleID = sold.ID
		return nil
	})
	if err != nil {
		s.metrics.IncSoldConversion("error")
		return nil, err
	}

	s.metrics.IncSoldConversion("success")
	s.logg.Info(s.logg.WithVehicleID(ctx, result.SoldVehicleID.String()), "vehicle converted to sold")
	return &result, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*SoldVehicleList, error) {
	query := listQuery{
		limit:  params.Limit,
		search: params.SearchTerm,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	sold, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sold vehicles")
	}

	result := &SoldVehicleList{SoldVehicles: sold}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.SoldVehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sold vehicle id required")
	}
	sold, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sold vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sold vehicle")
	}
	return sold, nil
}

// Update applies corrective edits to a sold record. Settlement fields stay
// subject to the same validation as conversion.
func (s *service) Update(ctx context.Context, id uuid.UUID, input SoldVehicleUpdateInput) (*models.SoldVehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sold vehicle id required")
	}

	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setString("stock_number", input.StockNumber)
	setString("color", input.Color)
	setString("customer_name", input.CustomerName)
	setString("customer_phone", input.CustomerPhone)
	setString("customer_email", input.CustomerEmail)
	setString("payment_reference", input.PaymentReference)
	if input.SaleAmount != nil {
		if !input.SaleAmount.GreaterThan(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "saleAmount must be greater than zero")
		}
		updates["sale_amount"] = *input.SaleAmount
	}
	if input.SaleDate != nil {
		if strings.TrimSpace(*input.SaleDate) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "saleDate cannot be empty")
		}
		updates["sale_date"] = strings.TrimSpace(*input.SaleDate)
	}
	if input.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*input.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		updates["payment_method"] = method
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sold vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sold vehicle")
	}
	return s.Get(ctx, id)
}
