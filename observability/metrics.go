package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var executionDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics holds the Prometheus instruments for the operation engine.
type Metrics struct {
	// Query metrics
	QueriesRegistered  *prometheus.CounterVec
	QueryFetchesTotal  *prometheus.CounterVec
	QueryFetchDuration *prometheus.HistogramVec

	// Mutation metrics
	MutationExecutionsTotal *prometheus.CounterVec
	MutationDuration        *prometheus.HistogramVec
	DisabledExecutionsTotal *prometheus.CounterVec

	// Invalidation metrics
	InvalidationsTotal   *prometheus.CounterVec
	RefetchesTotal       *prometheus.CounterVec
	InvalidationFanout   prometheus.Histogram
	OperationsRegistered prometheus.Gauge
	ActiveQueryHandles   prometheus.Gauge
}

// InitMetrics creates and registers all engine metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_queries_registered_total",
			Help: "Total number of query handles created.",
		}, []string{"operation"}),
		QueryFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_query_fetches_total",
			Help: "Total number of query fetches, by outcome.",
		}, []string{"operation", "outcome"}),
		QueryFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opquery_query_fetch_duration_seconds",
			Help:    "Query fetch duration in seconds.",
			Buckets: executionDurationBuckets,
		}, []string{"operation"}),
		MutationExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_mutation_executions_total",
			Help: "Total number of mutation executions, by outcome.",
		}, []string{"operation", "outcome"}),
		MutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opquery_mutation_duration_seconds",
			Help:    "Mutation execution duration in seconds.",
			Buckets: executionDurationBuckets,
		}, []string{"operation"}),
		DisabledExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_disabled_executions_total",
			Help: "Execute attempts rejected by the enabled gate.",
		}, []string{"operation"}),
		InvalidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_invalidations_total",
			Help: "Cache entries invalidated after mutations.",
		}, []string{"operation"}),
		RefetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opquery_refetches_total",
			Help: "Query handles refetched after mutations.",
		}, []string{"operation"}),
		InvalidationFanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opquery_invalidation_fanout",
			Help:    "Number of cache entries matched per invalidation pass.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		OperationsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opquery_operations_registered",
			Help: "Number of operations in the descriptor table.",
		}),
		ActiveQueryHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opquery_active_query_handles",
			Help: "Number of live query handles.",
		}),
	}

	reg.MustRegister(
		m.QueriesRegistered,
		m.QueryFetchesTotal,
		m.QueryFetchDuration,
		m.MutationExecutionsTotal,
		m.MutationDuration,
		m.DisabledExecutionsTotal,
		m.InvalidationsTotal,
		m.RefetchesTotal,
		m.InvalidationFanout,
		m.OperationsRegistered,
		m.ActiveQueryHandles,
	)

	return m
}
