package tradeins

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

	if err := conn.AutoMigrate(&models.TradeIn{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), logg)
	require.NoError(t, err)
	return svc
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newTestService(t, openTestDB(t))
	ctx := context.Background()

	mileage := 42000
	created, err := svc.Create(ctx, TradeInInput{
		VIN:     " 1hgbh41jxmn109186 ",
		Year:    2019,
		Make:    "Honda",
		Model:   "Civic",
		Color:   "White",
		Mileage: &mileage,
	})
	require.NoError(t, err)
	assert.Equal(t, "1HGBH41JXMN109186", created.VIN)
	assert.False(t, created.PickedUp)

	found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Civic", found.Model)
	require.NotNil(t, found.Mileage)
	assert.Equal(t, 42000, *found.Mileage)
}

func TestService_CreateRequiresMakeAndModel(t *testing.T) {
	svc := newTestService(t, openTestDB(t))

	_, err := svc.Create(context.Background(), TradeInInput{Make: "Honda"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestService_CreateAllowsEmptyVIN(t *testing.T) {
	svc := newTestService(t, openTestDB(t))

	created, err := svc.Create(context.Background(), TradeInInput{
		Make:  "Toyota",
		Model: "Corolla",
	})
	require.NoError(t, err)
	assert.Empty(t, created.VIN)
}

func TestService_SetPickedUpStampsAndClearsDate(t *testing.T) {
	svc := newTestService(t, openTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, TradeInInput{Make: "Toyota", Model: "Corolla"})
	require.NoError(t, err)

	picked, err := svc.SetPickedUp(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, picked.PickedUp)
	require.NotNil(t, picked.PickedUpDate)

	reverted, err := svc.SetPickedUp(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, reverted.PickedUp)
	assert.Nil(t, reverted.PickedUpDate)
}

func TestService_SetPickedUpMissingRecord(t *testing.T) {
	svc := newTestService(t, openTestDB(t))

	_, err := svc.SetPickedUp(context.Background(), uuid.New(), true)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestService_UpdateRejectsNegativeMileage(t *testing.T) {
	svc := newTestService(t, openTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, TradeInInput{Make: "Toyota", Model: "Corolla"})
	require.NoError(t, err)

	bad := -1
	_, err = svc.Update(ctx, created.ID, TradeInUpdateInput{Mileage: &bad})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestService_DeleteRemovesRecord(t *testing.T) {
	svc := newTestService(t, openTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, TradeInInput{Make: "Toyota", Model: "Corolla"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
