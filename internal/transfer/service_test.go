package transfer

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"testing"
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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to extract sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(
		&models.Vehicle{},
		&models.SoldVehicle{},
		&models.TradeIn{},
		&models.Document{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		inventory.NewRepository(conn),
		sales.NewRepository(conn),
		tradeins.NewRepository(conn),
		documents.NewRepository(conn),
		&gormTxRunner{db: conn},
		logg,
		nil,
		config.TransferConfig{SourceTag: "fleetdesk", Version: "1.0"},
	)
	require.NoError(t, err)
	return svc
}

func seedStore(t *testing.T, conn *gorm.DB) {
	t.Helper()

	vehicle := &models.Vehicle{
		VIN:    "1HGBH41JXMN109186",
		Year:   2021,
		Make:   "Honda",
		Model:  "Accord",
		Color:  "Silver",
		Status: enums.VehicleStatusInStock,
	}
	require.NoError(t, conn.Create(vehicle).Error)

	sold := &models.SoldVehicle{
		VIN:   "5YJSA1E26MF000001",
		Year:  2019,
		Make:  "Tesla",
		Model: "Model S",
		Sale: models.SaleInfo{
			SaleAmount:       decimal.NewFromInt(42000),
			SaleDate:         "2024-01-05",
			PaymentMethod:    enums.PaymentMethodWire,
			PaymentReference: "REF9",
		},
	}
	require.NoError(t, conn.Create(sold).Error)

	tradeIn := &models.TradeIn{
		VIN:   "2T1BURHE5JC000002",
		Year:  2015,
		Make:  "Toyota",
		Model: "Corolla",
	}
	require.NoError(t, conn.Create(tradeIn).Error)

	doc := &models.Document{
		VehicleID: vehicle.ID,
		FileName:  "title.pdf",
		FileSize:  2048,
	}
	require.NoError(t, conn.Create(doc).Error)
}

func TestReconcile_RejectsForeignEnvelope(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "some-other-product"},
		Inventory: []inventory.VehicleView{
			{VIN: "1HGBH41JXMN109186", Make: "Honda", Model: "Accord"},
		},
	}
	_, err := svc.Reconcile(context.Background(), snapshot, enums.DuplicateActionSkip)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeFormat))

	var count int64
	require.NoError(t, conn.Model(&models.Vehicle{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "a rejected envelope must write nothing")
}

func TestReconcile_RoundTripSkipIsNoOp(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	seedStore(t, conn)

	snapshot, err := svc.Export(ctx)
	require.NoError(t, err)

	result, err := svc.Reconcile(ctx, *snapshot, enums.DuplicateActionSkip)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.TotalImported)
	assert.Equal(t, 0, result.Summary.TotalErrors)
	assert.Equal(t, 4, result.Summary.TotalSkipped)

	for model, want := range map[any]int64{
		&models.Vehicle{}:     1,
		&models.SoldVehicle{}: 1,
		&models.TradeIn{}:     1,
		&models.Document{}:    1,
	} {
		var count int64
		require.NoError(t, conn.Model(model).Count(&count).Error)
		assert.Equal(t, want, count)
	}
}

func TestReconcile_OverwritePreservesLiveID(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	live := &models.Vehicle{
		VIN:    "1HGBH41JXMN109186",
		Make:   "Honda",
		Model:  "Accord",
		Color:  "Silver",
		Status: enums.VehicleStatusInStock,
	}
	require.NoError(t, conn.Create(live).Error)

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
		Inventory: []inventory.VehicleView{{
			ID:     uuid.New(), // snapshot id must never replace the live one
			VIN:    "1hgbh41jxmn109186",
			Make:   "Honda",
			Model:  "Accord",
			Color:  "Midnight Blue",
			Status: enums.VehicleStatusPDI,
		}},
	}

	result, err := svc.Reconcile(ctx, snapshot, enums.DuplicateActionOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inventory.Imported)

	var updated models.Vehicle
	require.NoError(t, conn.First(&updated, "id = ?", live.ID).Error)
	assert.Equal(t, "Midnight Blue", updated.Color)
	assert.Equal(t, enums.VehicleStatusPDI, updated.Status)

	var count int64
	require.NoError(t, conn.Model(&models.Vehicle{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReconcile_TradeInWithoutVINAlwaysImports(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
		TradeIns: []tradeins.TradeInView{
			{Make: "Toyota", Model: "Corolla"},
			{Make: "Toyota", Model: "Corolla"},
		},
	}

	result, err := svc.Reconcile(ctx, snapshot, enums.DuplicateActionSkip)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TradeIns.Imported)

	var count int64
	require.NoError(t, conn.Model(&models.TradeIn{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestReconcile_MalformedRecordDoesNotAbortBatch(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
		Inventory: []inventory.VehicleView{
			{VIN: "1HGBH41JXMN109186", Make: "Honda", Model: "Accord"},
			{VIN: "5YJSA1E26MF000001", Make: ""}, // missing required fields
			{VIN: "2T1BURHE5JC000002", Make: "Toyota", Model: "Corolla"},
		},
	}

	result, err := svc.Reconcile(ctx, snapshot, enums.DuplicateActionSkip)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inventory.Imported)
	require.Len(t, result.Inventory.Errors, 1)
	assert.Contains(t, result.Inventory.Errors[0], "inventory[1]")
	assert.Equal(t, 1, result.Summary.TotalErrors)

	var count int64
	require.NoError(t, conn.Model(&models.Vehicle{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestReconcile_OrderIndependence(t *testing.T) {
	base := []inventory.VehicleView{
		{VIN: "1HGBH41JXMN109186", Make: "Honda", Model: "Accord", Color: "Red"},
		{VIN: "5YJSA1E26MF000001", Make: "Tesla", Model: "Model S", Color: "Black"},
		{VIN: "2T1BURHE5JC000002", Make: "Toyota", Model: "Corolla", Color: "White"},
		{VIN: "3FA6P0H73ER000003", Make: "Ford", Model: "Fusion", Color: "Blue"},
	}

	finalState := func(records []inventory.VehicleView) map[string]string {
		conn := openTestDB(t)
		svc := newTestService(t, conn)

		result, err := svc.Reconcile(context.Background(), Snapshot{
			ExportInfo: ExportInfo{Source: "fleetdesk"},
			Inventory:  records,
		}, enums.DuplicateActionSkip)
		require.NoError(t, err)
		assert.Equal(t, len(base), result.Inventory.Imported)

		var rows []models.Vehicle
		require.NoError(t, conn.Find(&rows).Error)
		state := map[string]string{}
		for _, row := range rows {
			state[row.VIN] = row.Color
		}
		return state
	}

	want := finalState(base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 3; i++ {
		shuffled := make([]inventory.VehicleView, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, finalState(shuffled), "iteration %d", i)
	}
}

func TestReconcile_InterleavedEditLastWriterWins(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	live := &models.Vehicle{
		VIN:    "1HGBH41JXMN109186",
		Make:   "Honda",
		Model:  "Accord",
		Color:  "Silver",
		Status: enums.VehicleStatusInStock,
		Customer: models.CustomerInfo{
			Name: "Direct Edit Customer",
		},
	}
	require.NoError(t, conn.Create(live).Error)

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
		Inventory: []inventory.VehicleView{{
			VIN:          "1HGBH41JXMN109186",
			Make:         "Honda",
			Model:        "Accord",
			Color:        "Imported Green",
			Status:       enums.VehicleStatusPDI,
			CustomerName: "Snapshot Customer",
		}},
	}

	_, err := svc.Reconcile(ctx, snapshot, enums.DuplicateActionOverwrite)
	require.NoError(t, err)

	// a direct edit after the import wins, and the import must not have
	// clobbered unrelated fields with stale values along the way
	require.NoError(t, conn.Model(&models.Vehicle{}).
		Where("id = ?", live.ID).
		Update("customer_name", "Final Customer").Error)

	var final models.Vehicle
	require.NoError(t, conn.First(&final, "id = ?", live.ID).Error)
	assert.Equal(t, "Final Customer", final.Customer.Name)
	assert.Equal(t, "Imported Green", final.Color)
	assert.Equal(t, live.ID, final.ID)
}

func TestReconcile_RestorePreservesLinksAndDates(t *testing.T) {
	source := openTestDB(t)
	sourceSvc := newTestService(t, source)
	ctx := context.Background()

	dateAdded := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	soldAt := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	uploaded := time.Date(2023, 7, 15, 8, 0, 0, 0, time.UTC)

	tradeIn := &models.TradeIn{
		VIN:       "2T1BURHE5JC000002",
		Year:      2015,
		Make:      "Toyota",
		Model:     "Corolla",
		DateAdded: dateAdded,
	}
	require.NoError(t, source.Create(tradeIn).Error)

	sold := &models.SoldVehicle{
		VIN:       "5YJSA1E26MF000001",
		Year:      2019,
		Make:      "Tesla",
		Model:     "Model S",
		DateAdded: dateAdded,
		Sale: models.SaleInfo{
			SaleAmount:       decimal.NewFromInt(42000),
			SaleDate:         "2024-02-10",
			PaymentMethod:    enums.PaymentMethodWire,
			PaymentReference: "REF9",
		},
		TradeInID: &tradeIn.ID,
		SoldAt:    soldAt,
	}
	require.NoError(t, source.Create(sold).Error)

	doc := &models.Document{
		VehicleID:  sold.ID,
		FileName:   "contract.pdf",
		FileSize:   1024,
		UploadDate: uploaded,
	}
	require.NoError(t, source.Create(doc).Error)

	snapshot, err := sourceSvc.Export(ctx)
	require.NoError(t, err)

	restoreDB := openTestDB(t)
	restoreSvc := newTestService(t, restoreDB)
	result, err := restoreSvc.Reconcile(ctx, *snapshot, enums.DuplicateActionSkip)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summary.TotalImported)

	var restoredSold models.SoldVehicle
	require.NoError(t, restoreDB.First(&restoredSold, "vin = ?", "5YJSA1E26MF000001").Error)
	require.NotNil(t, restoredSold.TradeInID, "sold record must keep its trade-in link across a restore")
	assert.Equal(t, tradeIn.ID, *restoredSold.TradeInID)
	assert.WithinDuration(t, dateAdded, restoredSold.DateAdded, time.Second)
	assert.WithinDuration(t, soldAt, restoredSold.SoldAt, time.Second)

	// the link resolves because the trade-in kept its id too
	var restoredTradeIn models.TradeIn
	require.NoError(t, restoreDB.First(&restoredTradeIn, "id = ?", tradeIn.ID).Error)
	assert.WithinDuration(t, dateAdded, restoredTradeIn.DateAdded, time.Second)

	var restoredDoc models.Document
	require.NoError(t, restoreDB.First(&restoredDoc, "id = ?", doc.ID).Error)
	assert.Equal(t, sold.ID, restoredDoc.VehicleID)
	assert.WithinDuration(t, uploaded, restoredDoc.UploadDate, time.Second)
}

func TestReconcile_OverwriteReplacesLinkAndDates(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	live := &models.SoldVehicle{
		VIN:   "5YJSA1E26MF000001",
		Year:  2019,
		Make:  "Tesla",
		Model: "Model S",
		Sale: models.SaleInfo{
			SaleAmount:       decimal.NewFromInt(40000),
			SaleDate:         "2024-01-01",
			PaymentMethod:    enums.PaymentMethodWire,
			PaymentReference: "OLD",
		},
	}
	require.NoError(t, conn.Create(live).Error)

	linkedTradeIn := uuid.New()
	dateAdded := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	soldAt := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)

	snapshot := Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
		SoldVehicles: []sales.SoldVehicleView{{
			VIN:              "5YJSA1E26MF000001",
			Year:             2019,
			Make:             "Tesla",
			Model:            "Model S",
			DateAdded:        dateAdded,
			SaleAmount:       decimal.NewFromInt(42000),
			SaleDate:         "2024-02-10",
			PaymentMethod:    enums.PaymentMethodWire,
			PaymentReference: "REF9",
			TradeInID:        &linkedTradeIn,
			SoldAt:           soldAt,
		}},
	}

	result, err := svc.Reconcile(ctx, snapshot, enums.DuplicateActionOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SoldVehicles.Imported)

	var updated models.SoldVehicle
	require.NoError(t, conn.First(&updated, "id = ?", live.ID).Error)
	require.NotNil(t, updated.TradeInID)
	assert.Equal(t, linkedTradeIn, *updated.TradeInID)
	assert.Equal(t, "REF9", updated.Sale.PaymentReference)
	assert.WithinDuration(t, dateAdded, updated.DateAdded, time.Second)
	assert.WithinDuration(t, soldAt, updated.SoldAt, time.Second)
}

func TestExport_EnvelopeCarriesSourceAndVersion(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	seedStore(t, conn)

	snapshot, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fleetdesk", snapshot.ExportInfo.Source)
	assert.Equal(t, "1.0", snapshot.ExportInfo.Version)
	assert.NotEmpty(t, snapshot.ExportInfo.ExportDate)
	assert.Len(t, snapshot.Inventory, 1)
	assert.Len(t, snapshot.SoldVehicles, 1)
	assert.Len(t, snapshot.TradeIns, 1)
	assert.Len(t, snapshot.Documents, 1)
}

func TestReconcile_InvalidDuplicateAction(t *testing.T) {
	svc := newTestService(t, openTestDB(t))

	_, err := svc.Reconcile(context.Background(), Snapshot{
		ExportInfo: ExportInfo{Source: "fleetdesk"},
	}, "merge")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
