package enums

import "fmt"

// VehicleStatus tracks where a vehicle sits in the dealership lifecycle.
// Sold is terminal: a sold vehicle lives in its own entity set and never
// returns to active inventory.
type VehicleStatus string

const (
	VehicleStatusInTransit       VehicleStatus = "in-transit"
	VehicleStatusInStock         VehicleStatus = "in-stock"
	VehicleStatusPDI             VehicleStatus = "pdi"
	VehicleStatusPendingPickup   VehicleStatus = "pending-pickup"
	VehicleStatusPickupScheduled VehicleStatus = "pickup-scheduled"
	VehicleStatusSold            VehicleStatus = "sold"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusInTransit,
	VehicleStatusInStock,
	VehicleStatusPDI,
	VehicleStatusPendingPickup,
	VehicleStatusPickupScheduled,
	VehicleStatusSold,
}

// ActiveVehicleStatuses lists the statuses a vehicle in the active inventory
// set may hold.
func ActiveVehicleStatuses() []VehicleStatus {
	return []VehicleStatus{
		VehicleStatusInTransit,
		VehicleStatusInStock,
		VehicleStatusPDI,
		VehicleStatusPendingPickup,
		VehicleStatusPickupScheduled,
	}
}

// String implements fmt.Stringer.
func (v VehicleStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleStatus.
func (v VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the active lifecycle.
func (v VehicleStatus) IsTerminal() bool {
	return v == VehicleStatusSold
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}
