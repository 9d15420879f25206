// Package metrics exposes Prometheus metrics for the catalog importer.
//
// All collectors live on a private registry owned by [Metrics], so tests and
// multiple instances never collide on the global default registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// Batch status labels.
const (
	statusOK        = "ok"
	statusError     = "error"
	statusCancelled = "cancelled"
	statusBusy      = "busy"
)

// Metrics holds the importer collectors and implements core.Observer.
type Metrics struct {
	registry *prometheus.Registry

	rowsTotal     *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	batchRows     *prometheus.HistogramVec

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
}

// New creates a Metrics with its own registry. Go runtime and process
// collectors are registered alongside the importer metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_rows_total",
				Help:      "Rows processed by commits, by outcome",
			},
			[]string{"outcome"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_batches_total",
				Help:      "Validate and commit requests, by mode and status",
			},
			[]string{"mode", "status"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_batch_duration_seconds",
				Help:      "Time spent validating or committing a batch",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 240},
			},
			[]string{"mode"},
		),
		batchRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_batch_rows",
				Help:      "Rows per submitted batch",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"mode"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rowsTotal,
		m.batchesTotal,
		m.batchDuration,
		m.batchRows,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Register adds extra collectors, such as a PoolStatsCollector.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RowProcessed counts one committed row.
func (m *Metrics) RowProcessed(outcome core.Outcome) {
	m.rowsTotal.WithLabelValues(string(outcome)).Inc()
}

// BatchFinished records a finished validate or commit call.
func (m *Metrics) BatchFinished(mode string, rows int, elapsed time.Duration, err error) {
	m.batchesTotal.WithLabelValues(mode, batchStatus(err)).Inc()
	m.batchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.batchRows.WithLabelValues(mode).Observe(float64(rows))
}

func batchStatus(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, core.ErrTooManyImports):
		return statusBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return statusCancelled
	default:
		return statusError
	}
}

// RegisterLimiter exposes the import limiter occupancy as gauges.
func (m *Metrics) RegisterLimiter(l *core.ImportLimiter) error {
	return m.Register(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_slots_active",
			Help:      "Commits currently holding an import slot",
		}, func() float64 { return float64(l.Active()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_slots_capacity",
			Help:      "Maximum concurrent commits",
		}, func() float64 { return float64(l.Capacity()) }),
	)
}

var _ core.Observer = (*Metrics)(nil)
