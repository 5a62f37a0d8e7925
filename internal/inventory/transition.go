package inventory

import (
	"fmt"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/looplab/fsm"
)

// transitionEvent names the fsm event that lands a vehicle in the given
// status. Every active status is reachable from every other active status;
// the machine exists to make that set explicit rather than implied by
// string comparison.
func transitionEvent(status enums.VehicleStatus) string {
	return "to-" + status.String()
}

func newStatusMachine(current enums.VehicleStatus) *fsm.FSM {
	active := enums.ActiveVehicleStatuses()
	src := make([]string, 0, len(active))
	for _, s := range active {
		src = append(src, s.String())
	}

	events := make(fsm.Events, 0, len(active))
	for _, dst := range active {
		events = append(events, fsm.EventDesc{
			Name: transitionEvent(dst),
			Src:  src,
			Dst:  dst.String(),
		})
	}

	return fsm.NewFSM(current.String(), events, fsm.Callbacks{})
}

// PlanTransition decides whether moving the vehicle to the requested status
// is legal and, if so, returns the exact column set the caller must write.
// It never touches storage; an empty plan means the request is a no-op.
func PlanTransition(vehicle *models.Vehicle, input StatusChangeInput, now time.Time) (map[string]any, error) {
	requested := input.Status
	if !requested.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", requested))
	}
	if requested.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicles are sold through the sale conversion flow, not a status change")
	}
	if vehicle.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sold is a terminal status")
	}

	if requested == vehicle.Status {
		// Re-scheduling: same status, new pickup slot. Only the pickup
		// columns move; the arrival stamp never fires here.
		if requested == enums.VehicleStatusPickupScheduled && (input.PickupDate != "" || input.PickupTime != "") {
			if input.PickupDate == "" || input.PickupTime == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickupDate and pickupTime are required to schedule a pickup")
			}
			return map[string]any{
				"pickup_date": input.PickupDate,
				"pickup_time": input.PickupTime,
			}, nil
		}
		return map[string]any{}, nil
	}

	machine := newStatusMachine(vehicle.Status)
	if !machine.Can(transitionEvent(requested)) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move vehicle from %q to %q", vehicle.Status, requested))
	}

	fields := map[string]any{"status": requested}

	if requested == enums.VehicleStatusPickupScheduled {
		if input.PickupDate == "" || input.PickupTime == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickupDate and pickupTime are required to schedule a pickup")
		}
		fields["pickup_date"] = input.PickupDate
		fields["pickup_time"] = input.PickupTime
	}

	// Arrival stamp: leaving in-transit is the only transition that records
	// the in-stock timestamp.
	if vehicle.Status == enums.VehicleStatusInTransit {
		fields["in_stock_date"] = now
	}

	return fields, nil
}
