package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storageOps      *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec
	parseFailures   *prometheus.CounterVec
	authFailures    prometheus.Counter
	flowHits        *prometheus.CounterVec
	flowMisses      *prometheus.CounterVec
}

// StorageSnapshot is the JSON shape served by GET /v1/metrics/storage.
type StorageSnapshot struct {
	Reads         int64   `json:"reads"`
	Writes        int64   `json:"writes"`
	Removes       int64   `json:"removes"`
	Errors        int64   `json:"errors"`
	ParseFailures int64   `json:"parseFailures"`
	AuthFailures  int64   `json:"authFailures"`
	ErrorRate     float64 `json:"errorRate"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gestao_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storageOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestao_storage_ops_total",
				Help: "Total key-value storage operations by kind.",
			},
			[]string{"op"},
		),
		storageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestao_storage_errors_total",
				Help: "Total failed key-value storage operations by kind.",
			},
			[]string{"op"},
		),
		parseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestao_record_parse_failures_total",
				Help: "Stored records that failed to decode and were treated as absent.",
			},
			[]string{"namespace"},
		),
		authFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gestao_auth_failures_total",
				Help: "Login attempts rejected with the generic credentials error.",
			},
		),
		flowHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestao_flow_cache_hits_total",
				Help: "Onboarding flow cache hits.",
			},
			[]string{"cache"},
		),
		flowMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestao_flow_cache_misses_total",
				Help: "Onboarding flow cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStorageOp counts one storage operation ("read", "write" or "remove").
func (m *Metrics) IncrStorageOp(op string) {
	m.storageOps.WithLabelValues(op).Inc()
}

// IncrStorageError counts one failed storage operation.
func (m *Metrics) IncrStorageError(op string) {
	m.storageErrors.WithLabelValues(op).Inc()
}

// IncrParseFailure counts a malformed stored record, by namespace.
func (m *Metrics) IncrParseFailure(namespace string) {
	m.parseFailures.WithLabelValues(namespace).Inc()
}

// IncrAuthFailure counts a rejected login attempt.
func (m *Metrics) IncrAuthFailure() {
	m.authFailures.Inc()
}

// IncrFlowHit increments the flow cache hit counter.
func (m *Metrics) IncrFlowHit(cache string) {
	m.flowHits.WithLabelValues(cache).Inc()
}

// IncrFlowMiss increments the flow cache miss counter.
func (m *Metrics) IncrFlowMiss(cache string) {
	m.flowMisses.WithLabelValues(cache).Inc()
}

// GetStorageSnapshot returns a snapshot of storage-related counters suitable
// for the GET /v1/metrics/storage endpoint.
func (m *Metrics) GetStorageSnapshot() *StorageSnapshot {
	reads := getCounterValue(m.storageOps, "read")
	writes := getCounterValue(m.storageOps, "write")
	removes := getCounterValue(m.storageOps, "remove")
	errs := getCounterValue(m.storageErrors, "read") +
		getCounterValue(m.storageErrors, "write") +
		getCounterValue(m.storageErrors, "remove")

	parseFails := float64(0)
	for _, ns := range []string{"user", "company", "onboarding", "clients"} {
		parseFails += getCounterValue(m.parseFailures, ns)
	}

	total := reads + writes + removes
	errorRate := float64(0)
	if total > 0 {
		errorRate = errs / total
	}

	return &StorageSnapshot{
		Reads:         int64(reads),
		Writes:        int64(writes),
		Removes:       int64(removes),
		Errors:        int64(errs),
		ParseFailures: int64(parseFails),
		AuthFailures:  int64(getSimpleCounterValue(m.authFailures)),
		ErrorRate:     errorRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getSimpleCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
