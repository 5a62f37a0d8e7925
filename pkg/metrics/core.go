package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics records outcomes for the lifecycle operations that matter
// operationally: sold conversions, status transitions, and snapshot imports.
type CoreMetrics struct {
	soldConversions *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	importRecords   *prometheus.CounterVec
}

// NewCoreMetrics registers the core metrics on the provided registerer.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	if reg == nil {
		return &CoreMetrics{}
	}
	soldConversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sold_conversions_total",
		Help: "Sold-conversion attempts by outcome.",
	}, []string{"outcome"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vehicle_status_changes_total",
		Help: "Applied vehicle status transitions by target status.",
	}, []string{"status"})
	importRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_records_total",
		Help: "Snapshot import record outcomes by entity kind.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(soldConversions, statusChanges, importRecords)
	return &CoreMetrics{
		soldConversions: soldConversions,
		statusChanges:   statusChanges,
		importRecords:   importRecords,
	}
}

// IncSoldConversion increments the conversion counter for the given outcome.
func (c *CoreMetrics) IncSoldConversion(outcome string) {
	if c == nil || c.soldConversions == nil {
		return
	}
	c.soldConversions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStatusChange increments the transition counter for the target status.
func (c *CoreMetrics) IncStatusChange(status string) {
	if c == nil || c.statusChanges == nil {
		return
	}
	c.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// AddImportRecords adds to the import counter for a kind/outcome pair.
func (c *CoreMetrics) AddImportRecords(kind, outcome string, n int) {
	if c == nil || c.importRecords == nil || n <= 0 {
		return
	}
	c.importRecords.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
