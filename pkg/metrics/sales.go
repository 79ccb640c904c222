package metrics

import (
	"time"

	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Sale ledger operation labels.
const (
	OperationCreate = "create"
	OperationCancel = "cancel"
	OperationRefund = "refund"
)

// SalesMetrics records outcomes and latency of sale ledger operations.
type SalesMetrics struct {
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
	created    prometheus.Counter
	conflicts  *prometheus.CounterVec
}

// NewSalesMetrics registers the sale ledger metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sales_operation_duration_seconds",
		Help:    "Duration of sale ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_operations_total",
		Help: "Sale ledger operations by outcome.",
	}, []string{"operation", "outcome"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Sales committed.",
	})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_conflicts_total",
		Help: "Sale ledger operations rejected with a conflict.",
	}, []string{"operation"})
	reg.MustRegister(duration, operations, created, conflicts)
	return &SalesMetrics{
		duration:   duration,
		operations: operations,
		created:    created,
		conflicts:  conflicts,
	}
}

// Observe records the duration and outcome of one operation.
func (m *SalesMetrics) Observe(operation string, elapsed time.Duration, err error) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	outcome := Outcome(err)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.operations.WithLabelValues(op, outcome).Inc()
	switch {
	case outcome == "conflict":
		m.conflicts.WithLabelValues(op).Inc()
	case outcome == "success" && op == OperationCreate:
		m.created.Inc()
	}
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeConflict:
		return "conflict"
	case pkgerrors.CodeValidation:
		return "validation"
	case pkgerrors.CodeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
