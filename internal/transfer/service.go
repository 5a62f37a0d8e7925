package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/internal/documents"
	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/internal/sales"
	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/metrics"
	"github.com/fleetdesk/fleetdesk-backend/pkg/vin"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exports the whole store as one snapshot and reconciles snapshots
// back in.
type Service interface {
	Export(ctx context.Context) (*Snapshot, error)
	Reconcile(ctx context.Context, snapshot Snapshot, action enums.DuplicateAction) (*ReconcileResult, error)
}

type service struct {
	vehicles inventory.Repository
	sold     sales.Repository
	tradeIns tradeins.Repository
	docs     documents.Repository
	tx       txRunner
	logg     *logger.Logger
	metrics  *metrics.CoreMetrics
	cfg      config.TransferConfig
	now      func() time.Time
}

// NewService builds a transfer service with the required dependencies.
func NewService(
	vehicles inventory.Repository,
	sold sales.Repository,
	tradeIns tradeins.Repository,
	docs documents.Repository,
	tx txRunner,
	logg *logger.Logger,
	core *metrics.CoreMetrics,
	cfg config.TransferConfig,
) (Service, error) {
	if vehicles == nil || sold == nil || tradeIns == nil || docs == nil {
		return nil, fmt.Errorf("all entity repositories required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.SourceTag == "" {
		return nil, fmt.Errorf("transfer source tag required")
	}
	return &service{
		vehicles: vehicles,
		sold:     sold,
		tradeIns: tradeIns,
		docs:     docs,
		tx:       tx,
		logg:     logg,
		metrics:  core,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Export reads every entity kind and wraps them in a validated envelope.
// It is read-only; no transactional guarantee is needed.
func (s *service) Export(ctx context.Context) (*Snapshot, error) {
	vehicles, err := s.vehicles.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export vehicles")
	}
	sold, err := s.sold.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export sold vehicles")
	}
	tradeIns, err := s.tradeIns.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export trade-ins")
	}
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export documents")
	}

	return &Snapshot{
		ExportInfo: ExportInfo{
			Source:     s.cfg.SourceTag,
			Version:    s.cfg.Version,
			ExportDate: s.now().UTC().Format(time.RFC3339),
		},
		Inventory:    inventory.NewVehicleViews(vehicles),
		SoldVehicles: sales.NewSoldVehicleViews(sold),
		TradeIns:     tradeins.NewTradeInViews(tradeIns),
		Documents:    documents.NewDocumentViews(docs),
	}, nil
}

// Reconcile merges a snapshot into the live store. The envelope is checked
// before anything is written; after that each record is processed in its own
// transaction, so a malformed record is counted and skipped without aborting
// the batch.
func (s *service) Reconcile(ctx context.Context, snapshot Snapshot, action enums.DuplicateAction) (*ReconcileResult, error) {
	if snapshot.ExportInfo.Source != s.cfg.SourceTag {
		return nil, pkgerrors.New(pkgerrors.CodeFormat,
			fmt.Sprintf("snapshot source %q does not match %q", snapshot.ExportInfo.Source, s.cfg.SourceTag))
	}
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid duplicate action %q", action))
	}

	result := &ReconcileResult{}
	var failures error

	result.Inventory, failures = s.reconcileVehicles(ctx, snapshot.Inventory, action, failures)
	result.SoldVehicles, failures = s.reconcileSoldVehicles(ctx, snapshot.SoldVehicles, action, failures)
	result.TradeIns, failures = s.reconcileTradeIns(ctx, snapshot.TradeIns, action, failures)
	result.Documents, failures = s.reconcileDocuments(ctx, snapshot.Documents, action, failures)
	result.finalize()

	s.recordMetrics("inventory", result.Inventory)
	s.recordMetrics("sold_vehicles", result.SoldVehicles)
	s.recordMetrics("trade_ins", result.TradeIns)
	s.recordMetrics("documents", result.Documents)

	summaryCtx := s.logg.WithFields(ctx, map[string]any{
		"imported": result.Summary.TotalImported,
		"skipped":  result.Summary.TotalSkipped,
		"errors":   result.Summary.TotalErrors,
	})
	if failures != nil {
		s.logg.Warn(s.logg.WithField(summaryCtx, "failures", failures.Error()), "snapshot import finished with record errors")
	} else {
		s.logg.Info(summaryCtx, "snapshot import finished")
	}

	return result, nil
}

func (s *service) recordMetrics(kind string, res KindResult) {
	s.metrics.AddImportRecords(kind, "imported", res.Imported)
	s.metrics.AddImportRecords(kind, "skipped", res.Skipped)
	s.metrics.AddImportRecords(kind, "error", len(res.Errors))
}

func (s *service) reconcileVehicles(ctx context.Context, records []inventory.VehicleView, action enums.DuplicateAction, failures error) (KindResult, error) {
	var res KindResult
	for i, rec := range records {
		err := s.importVehicle(ctx, rec, action, &res)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("inventory[%d]: %v", i, err))
			failures = multierr.Append(failures, fmt.Errorf("inventory[%d]: %w", i, err))
		}
	}
	return res, failures
}

func (s *service) importVehicle(ctx context.Context, rec inventory.VehicleView, action enums.DuplicateAction, res *KindResult) error {
	if strings.TrimSpace(rec.Make) == "" || strings.TrimSpace(rec.Model) == "" {
		return fmt.Errorf("make and model are required")
	}
	status := rec.Status
	if status == "" {
		status = enums.VehicleStatusInTransit
	}
	if !status.IsValid() || status.IsTerminal() {
		return fmt.Errorf("invalid status %q for active inventory", rec.Status)
	}
	key := vin.Normalize(rec.VIN)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.vehicles.WithTx(tx)

		if key != "" {
			existing, err := repo.FindByVIN(ctx, key)
			if err == nil {
				if action == enums.DuplicateActionSkip {
					res.Skipped++
					return nil
				}
				// overwrite replaces every field but never the live id
				if err := repo.Update(ctx, existing.ID, vehicleColumns(rec, key, status)); err != nil {
					return fmt.Errorf("overwrite vehicle: %w", err)
				}
				res.Imported++
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("lookup vehicle by vin: %w", err)
			}
		}

		// Inserts keep the snapshot id and creation date: documents reference
		// vehicles by id, and a restore must not fabricate either. The model
		// hooks only fill them when left zero.
		vehicle := &models.Vehicle{
			ID:               rec.ID,
			StockNumber:      rec.StockNumber,
			VIN:              key,
			Year:             rec.Year,
			Make:             strings.TrimSpace(rec.Make),
			Model:            strings.TrimSpace(rec.Model),
			Trim:             rec.Trim,
			Color:            rec.Color,
			FleetCompany:     rec.FleetCompany,
			OperationCompany: rec.OperationCompany,
			Status:           status,
			DateAdded:        rec.DateAdded,
			InStockDate:      rec.InStockDate,
			PickupDate:       rec.PickupDate,
			PickupTime:       rec.PickupTime,
			Customer: models.CustomerInfo{
				Name:  rec.CustomerName,
				Phone: rec.CustomerPhone,
				Email: rec.CustomerEmail,
			},
			TradeInID: rec.TradeInID,
		}
		if _, err := repo.Create(ctx, vehicle); err != nil {
			return fmt.Errorf("insert vehicle: %w", err)
		}
		res.Imported++
		return nil
	})
}

func vehicleColumns(rec inventory.VehicleView, key string, status enums.VehicleStatus) map[string]any {
	columns := map[string]any{
		"stock_number":      rec.StockNumber,
		"vin":               key,
		"year":              rec.Year,
		"make":              strings.TrimSpace(rec.Make),
		"model":             strings.TrimSpace(rec.Model),
		"trim":              rec.Trim,
		"color":             rec.Color,
		"fleet_company":     rec.FleetCompany,
		"operation_company": rec.OperationCompany,
		"status":            status,
		"in_stock_date":     rec.InStockDate,
		"pickup_date":       rec.PickupDate,
		"pickup_time":       rec.PickupTime,
		"customer_name":     rec.CustomerName,
		"customer_phone":    rec.CustomerPhone,
		"customer_email":    rec.CustomerEmail,
		"trade_in_id":       rec.TradeInID,
	}
	// a hand-built snapshot without a creation date keeps the live one
	if !rec.DateAdded.IsZero() {
		columns["date_added"] = rec.DateAdded
	}
	return columns
}

func (s *service) reconcileSoldVehicles(ctx context.Context, records []sales.SoldVehicleView, action enums.DuplicateAction, failures error) (KindResult, error) {
	var res KindResult
	for i, rec := range records {
		err := s.importSoldVehicle(ctx, rec, action, &res)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("soldVehicles[%d]: %v", i, err))
			failures = multierr.Append(failures, fmt.Errorf("soldVehicles[%d]: %w", i, err))
		}
	}
	return res, failures
}

func (s *service) importSoldVehicle(ctx context.Context, rec sales.SoldVehicleView, action enums.DuplicateAction, res *KindResult) error {
	if strings.TrimSpace(rec.Make) == "" || strings.TrimSpace(rec.Model) == "" {
		return fmt.Errorf("make and model are required")
	}
	if rec.PaymentMethod != "" && !rec.PaymentMethod.IsValid() {
		return fmt.Errorf("invalid payment method %q", rec.PaymentMethod)
	}
	key := vin.Normalize(rec.VIN)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.sold.WithTx(tx)

		if key != "" {
			existing, err := repo.FindByVIN(ctx, key)
			if err == nil {
				if action == enums.DuplicateActionSkip {
					res.Skipped++
					return nil
				}
				if err := repo.Update(ctx, existing.ID, soldVehicleColumns(rec, key)); err != nil {
					return fmt.Errorf("overwrite sold vehicle: %w", err)
				}
				res.Imported++
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("lookup sold vehicle by vin: %w", err)
			}
		}

		sold := &models.SoldVehicle{
			ID:               rec.ID,
			StockNumber:      rec.StockNumber,
			VIN:              key,
			Year:             rec.Year,
			Make:             strings.TrimSpace(rec.Make),
			Model:            strings.TrimSpace(rec.Model),
			Trim:             rec.Trim,
			Color:            rec.Color,
			FleetCompany:     rec.FleetCompany,
			OperationCompany: rec.OperationCompany,
			DateAdded:        rec.DateAdded,
			InStockDate:      rec.InStockDate,
			Customer: models.CustomerInfo{
				Name:  rec.CustomerName,
				Phone: rec.CustomerPhone,
				Email: rec.CustomerEmail,
			},
			Sale: models.SaleInfo{
				SaleAmount:       rec.SaleAmount,
				SaleDate:         rec.SaleDate,
				PaymentMethod:    rec.PaymentMethod,
				PaymentReference: rec.PaymentReference,
			},
			TradeInID: rec.TradeInID,
			SoldAt:    rec.SoldAt,
		}
		if _, err := repo.Create(ctx, sold); err != nil {
			return fmt.Errorf("insert sold vehicle: %w", err)
		}
		res.Imported++
		return nil
	})
}

func soldVehicleColumns(rec sales.SoldVehicleView, key string) map[string]any {
	columns := map[string]any{
		"stock_number":      rec.StockNumber,
		"vin":               key,
		"year":              rec.Year,
		"make":              strings.TrimSpace(rec.Make),
		"model":             strings.TrimSpace(rec.Model),
		"trim":              rec.Trim,
		"color":             rec.Color,
		"fleet_company":     rec.FleetCompany,
		"operation_company": rec.OperationCompany,
		"in_stock_date":     rec.InStockDate,
		"customer_name":     rec.CustomerName,
		"customer_phone":    rec.CustomerPhone,
		"customer_email":    rec.CustomerEmail,
		"sale_amount":       rec.SaleAmount,
		"sale_date":         rec.SaleDate,
		"payment_method":    rec.PaymentMethod,
		"payment_reference": rec.PaymentReference,
		"trade_in_id":       rec.TradeInID,
	}
	if !rec.DateAdded.IsZero() {
		columns["date_added"] = rec.DateAdded
	}
	if !rec.SoldAt.IsZero() {
		columns["sold_at"] = rec.SoldAt
	}
	return columns
}

func (s *service) reconcileTradeIns(ctx context.Context, records []tradeins.TradeInView, action enums.DuplicateAction, failures error) (KindResult, error) {
	var res KindResult
	for i, rec := range records {
		err := s.importTradeIn(ctx, rec, action, &res)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("tradeIns[%d]: %v", i, err))
			failures = multierr.Append(failures, fmt.Errorf("tradeIns[%d]: %w", i, err))
		}
	}
	return res, failures
}

func (s *service) importTradeIn(ctx context.Context, rec tradeins.TradeInView, action enums.DuplicateAction, res *KindResult) error {
	if strings.TrimSpace(rec.Make) == "" || strings.TrimSpace(rec.Model) == "" {
		return fmt.Errorf("make and model are required")
	}
	key := vin.Normalize(rec.VIN)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.tradeIns.WithTx(tx)

		// trade-ins without a VIN have no natural key and always import
		if key != "" {
			existing, err := repo.FindByVIN(ctx, key)
			if err == nil {
				if action == enums.DuplicateActionSkip {
					res.Skipped++
					return nil
				}
				if err := repo.Update(ctx, existing.ID, tradeInColumns(rec, key)); err != nil {
					return fmt.Errorf("overwrite trade-in: %w", err)
				}
				res.Imported++
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("lookup trade-in by vin: %w", err)
			}
		}

		tradeIn := &models.TradeIn{
			ID:           rec.ID,
			VIN:          key,
			Year:         rec.Year,
			Make:         strings.TrimSpace(rec.Make),
			Model:        strings.TrimSpace(rec.Model),
			Trim:         rec.Trim,
			Color:        rec.Color,
			Mileage:      rec.Mileage,
			Notes:        rec.Notes,
			PickedUp:     rec.PickedUp,
			PickedUpDate: rec.PickedUpDate,
			DateAdded:    rec.DateAdded,
		}
		if _, err := repo.Create(ctx, tradeIn); err != nil {
			return fmt.Errorf("insert trade-in: %w", err)
		}
		res.Imported++
		return nil
	})
}

func tradeInColumns(rec tradeins.TradeInView, key string) map[string]any {
	columns := map[string]any{
		"vin":            key,
		"year":           rec.Year,
		"make":           strings.TrimSpace(rec.Make),
		"model":          strings.TrimSpace(rec.Model),
		"trim":           rec.Trim,
		"color":          rec.Color,
		"mileage":        rec.Mileage,
		"notes":          rec.Notes,
		"picked_up":      rec.PickedUp,
		"picked_up_date": rec.PickedUpDate,
	}
	if !rec.DateAdded.IsZero() {
		columns["date_added"] = rec.DateAdded
	}
	return columns
}

func (s *service) reconcileDocuments(ctx context.Context, records []documents.DocumentView, action enums.DuplicateAction, failures error) (KindResult, error) {
	var res KindResult
	for i, rec := range records {
		err := s.importDocument(ctx, rec, action, &res)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("documents[%d]: %v", i, err))
			failures = multierr.Append(failures, fmt.Errorf("documents[%d]: %w", i, err))
		}
	}
	return res, failures
}

// importDocument keys on the document id: metadata has no other natural key
// and binary payloads never travel in a snapshot, so re-importing the same
// export must not multiply rows.
func (s *service) importDocument(ctx context.Context, rec documents.DocumentView, action enums.DuplicateAction, res *KindResult) error {
	if strings.TrimSpace(rec.FileName) == "" {
		return fmt.Errorf("fileName is required")
	}
	if rec.VehicleID == uuid.Nil {
		return fmt.Errorf("vehicleId is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.docs.WithTx(tx)

		if rec.ID != uuid.Nil {
			existing, err := repo.FindByID(ctx, rec.ID)
			if err == nil {
				if action == enums.DuplicateActionSkip {
					res.Skipped++
					return nil
				}
				if err := repo.Delete(ctx, existing.ID); err != nil {
					return fmt.Errorf("overwrite document: %w", err)
				}
			} else if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("lookup document: %w", err)
			}
		}

		doc := &models.Document{
			ID:         rec.ID,
			VehicleID:  rec.VehicleID,
			FileName:   strings.TrimSpace(rec.FileName),
			FileSize:   rec.FileSize,
			UploadDate: rec.UploadDate,
			StorageKey: rec.StorageKey,
		}
		if _, err := repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		res.Imported++
		return nil
	})
}
