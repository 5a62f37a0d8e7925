package db

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"gorm.io/gorm"
)

func newSQLiteClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(
		context.Background(),
		config.DBConfig{DSN: "file::memory:?cache=shared"},
		config.FeatureFlagsConfig{UseSQLite: true},
		nil,
	)
	if err != nil {
		t.Fatalf("opening sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, config.FeatureFlagsConfig{UseSQLite: true}, nil)
	if err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestPing(t *testing.T) {
	client := newSQLiteClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	client := newSQLiteClient(t)
	conn := client.DB()

	if err := conn.Exec("CREATE TABLE tx_probe (id INTEGER PRIMARY KEY, note TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO tx_probe (note) VALUES ('kept')").Error
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	wantErr := errors.New("force rollback")
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO tx_probe (note) VALUES ('discarded')").Error; err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected forced error back, got %v", err)
	}

	var count int64
	if err := conn.Raw("SELECT COUNT(*) FROM tx_probe").Scan(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly the committed row, got %d", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error is not a violation")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "vehicles_vin_key"`), "") {
		t.Fatalf("expected postgres message to match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: vehicles.vin"), "") {
		t.Fatalf("expected sqlite message to match")
	}
	if !IsUniqueViolation(errors.New(`violates unique constraint "vehicles_vin_key"`), "vehicles_vin_key") {
		t.Fatalf("expected named constraint to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatalf("unrelated error must not match")
	}
}
