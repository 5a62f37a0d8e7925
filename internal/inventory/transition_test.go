package inventory

import (
	"testing"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeVehicle(status enums.VehicleStatus) *models.Vehicle {
	return &models.Vehicle{
		Make:   "Ford",
		Model:  "Transit",
		Status: status,
	}
}

func TestPlanTransition_SameStatusIsNoOp(t *testing.T) {
	now := time.Now().UTC()

	fields, err := PlanTransition(activeVehicle(enums.VehicleStatusInStock), StatusChangeInput{
		Status: enums.VehicleStatusInStock,
	}, now)

	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestPlanTransition_LeavingInTransitStampsInStockDate(t *testing.T) {
	now := time.Now().UTC()

	for _, target := range []enums.VehicleStatus{
		enums.VehicleStatusInStock,
		enums.VehicleStatusPDI,
		enums.VehicleStatusPendingPickup,
	} {
		fields, err := PlanTransition(activeVehicle(enums.VehicleStatusInTransit), StatusChangeInput{
			Status: target,
		}, now)

		require.NoError(t, err, "target %s", target)
		assert.Equal(t, target, fields["status"])
		assert.Equal(t, now, fields["in_stock_date"], "target %s", target)
	}
}

func TestPlanTransition_StampOnlyFiresWhenLeavingInTransit(t *testing.T) {
	now := time.Now().UTC()

	for _, current := range []enums.VehicleStatus{
		enums.VehicleStatusInStock,
		enums.VehicleStatusPDI,
		enums.VehicleStatusPendingPickup,
	} {
		for _, target := range []enums.VehicleStatus{
			enums.VehicleStatusInStock,
			enums.VehicleStatusPDI,
			enums.VehicleStatusPendingPickup,
		} {
			if current == target {
				continue
			}
			fields, err := PlanTransition(activeVehicle(current), StatusChangeInput{Status: target}, now)
			require.NoError(t, err)
			assert.NotContains(t, fields, "in_stock_date", "%s -> %s", current, target)
		}
	}
}

func TestPlanTransition_PickupScheduledRequiresBothFields(t *testing.T) {
	now := time.Now().UTC()

	cases := []StatusChangeInput{
		{Status: enums.VehicleStatusPickupScheduled},
		{Status: enums.VehicleStatusPickupScheduled, PickupDate: "2024-03-01"},
		{Status: enums.VehicleStatusPickupScheduled, PickupTime: "10:30"},
	}
	for _, input := range cases {
		fields, err := PlanTransition(activeVehicle(enums.VehicleStatusInStock), input, now)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		assert.Nil(t, fields)
	}
}

func TestPlanTransition_PickupScheduledSetsPickupColumns(t *testing.T) {
	now := time.Now().UTC()

	fields, err := PlanTransition(activeVehicle(enums.VehicleStatusPendingPickup), StatusChangeInput{
		Status:     enums.VehicleStatusPickupScheduled,
		PickupDate: "2024-03-01",
		PickupTime: "10:30",
	}, now)

	require.NoError(t, err)
	assert.Equal(t, enums.VehicleStatusPickupScheduled, fields["status"])
	assert.Equal(t, "2024-03-01", fields["pickup_date"])
	assert.Equal(t, "10:30", fields["pickup_time"])
	assert.NotContains(t, fields, "in_stock_date")
}

func TestPlanTransition_ReschedulingOnlyMovesPickupColumns(t *testing.T) {
	now := time.Now().UTC()

	fields, err := PlanTransition(activeVehicle(enums.VehicleStatusPickupScheduled), StatusChangeInput{
		Status:     enums.VehicleStatusPickupScheduled,
		PickupDate: "2024-03-08",
		PickupTime: "14:00",
	}, now)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"pickup_date": "2024-03-08",
		"pickup_time": "14:00",
	}, fields)
}

func TestPlanTransition_SoldIsRejectedBothWays(t *testing.T) {
	now := time.Now().UTC()

	_, err := PlanTransition(activeVehicle(enums.VehicleStatusInStock), StatusChangeInput{
		Status: enums.VehicleStatusSold,
	}, now)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = PlanTransition(activeVehicle(enums.VehicleStatusSold), StatusChangeInput{
		Status: enums.VehicleStatusInStock,
	}, now)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestPlanTransition_UnknownStatusFailsValidation(t *testing.T) {
	_, err := PlanTransition(activeVehicle(enums.VehicleStatusInStock), StatusChangeInput{
		Status: "detailing",
	}, time.Now().UTC())

	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
