package transfer

import (
	"github.com/fleetdesk/fleetdesk-backend/internal/documents"
	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/internal/sales"
	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
)

// ExportInfo is the snapshot envelope used for round-trip validation.
type ExportInfo struct {
	Source     string `json:"source"`
	Version    string `json:"version"`
	ExportDate string `json:"exportDate"`
}

// Snapshot is the full-store export document. Its record shapes are the
// same wire views the HTTP layer serves, so anything the reconciler needs
// is guaranteed to be present in an export.
type Snapshot struct {
	ExportInfo   ExportInfo               `json:"exportInfo"`
	Inventory    []inventory.VehicleView  `json:"inventory"`
	SoldVehicles []sales.SoldVehicleView  `json:"soldVehicles"`
	TradeIns     []tradeins.TradeInView   `json:"tradeIns"`
	Documents    []documents.DocumentView `json:"documents"`
}

// KindResult summarizes the reconciliation outcome for one entity kind.
type KindResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Summary aggregates counts across all kinds.
type Summary struct {
	TotalImported int `json:"totalImported"`
	TotalSkipped  int `json:"totalSkipped"`
	TotalErrors   int `json:"totalErrors"`
}

// ReconcileResult is the caller-visible contract of an import: per-kind
// outcomes plus the aggregate summary.
type ReconcileResult struct {
	Summary      Summary    `json:"summary"`
	Inventory    KindResult `json:"inventory"`
	SoldVehicles KindResult `json:"soldVehicles"`
	TradeIns     KindResult `json:"tradeIns"`
	Documents    KindResult `json:"documents"`
}

func (r *ReconcileResult) finalize() {
	for _, kind := range []KindResult{r.Inventory, r.SoldVehicles, r.TradeIns, r.Documents} {
		r.Summary.TotalImported += kind.Imported
		r.Summary.TotalSkipped += kind.Skipped
		r.Summary.TotalErrors += len(kind.Errors)
	}
}
