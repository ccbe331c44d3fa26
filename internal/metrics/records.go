package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record repository and query compiler Prometheus metrics.
var (
	RecordOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recordex",
			Name:      "record_ops_total",
			Help:      "Total number of record repository operations",
		},
		[]string{"op", "style", "status"},
	)

	RecordOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recordex",
			Name:      "record_op_duration_seconds",
			Help:      "Record repository operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"op"},
	)

	QueryCompilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recordex",
			Name:      "query_compiles_total",
			Help:      "Total number of query set compilations",
		},
		[]string{"backend", "style"}, // backend: "filter" / "mask"
	)
)

// Compile backends.
const (
	BackendFilter = "filter"
	BackendMask   = "mask"
)

var registered bool

// Register registers the record metrics with the default registry. Safe to call more than once.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(RecordOpsTotal)
	prometheus.MustRegister(RecordOpDuration)
	prometheus.MustRegister(QueryCompilesTotal)
	registered = true
}

// ObserveRecordOp records one finished repository operation.
func ObserveRecordOp(op, style string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecordOpsTotal.WithLabelValues(op, style, status).Inc()
	RecordOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveCompile counts one query set compilation for a record style.
func ObserveCompile(backend, style string) {
	QueryCompilesTotal.WithLabelValues(backend, style).Inc()
}
