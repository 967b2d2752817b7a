package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides calculation and replication metrics
type Collector struct {
	// Calculation Metrics
	FarmCalculationsTotal      *prometheus.CounterVec
	FarmCalculationDuration    prometheus.Histogram
	ComponentCalculationsTotal *prometheus.CounterVec
	CalculationFailuresTotal   *prometheus.CounterVec
	BatchSize                  prometheus.Histogram

	// Replication Metrics
	ReplicationsTotal prometheus.Counter

	// API Metrics
	APIRequestsTotal *prometheus.CounterVec
}

// NewCollector creates a new metrics collector registered on reg. A nil
// registerer creates unregistered metrics, which suits tests.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		FarmCalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "farm_calculations_total",
				Help:      "Total number of farm calculations by outcome",
			},
			[]string{"outcome"},
		),

		FarmCalculationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "farm_calculation_duration_seconds",
				Help:      "Duration of a single farm calculation in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),

		ComponentCalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_calculations_total",
				Help:      "Total number of component calculations by family",
			},
			[]string{"family"},
		),

		CalculationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculation_failures_total",
				Help:      "Total number of failed farm calculations by error kind",
			},
			[]string{"kind"},
		),

		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of farms per batch calculation",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 500},
			},
		),

		ReplicationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "farm_replications_total",
				Help:      "Total number of farms replicated",
			},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordFarmCalculation records the outcome and duration of one farm calculation
func (c *Collector) RecordFarmCalculation(duration time.Duration, failed bool) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	c.FarmCalculationsTotal.WithLabelValues(outcome).Inc()
	c.FarmCalculationDuration.Observe(duration.Seconds())
}

// RecordComponent counts a component calculation of the given family
func (c *Collector) RecordComponent(family string) {
	c.ComponentCalculationsTotal.WithLabelValues(family).Inc()
}

// RecordFailure counts a failed farm by error kind
func (c *Collector) RecordFailure(kind string) {
	c.CalculationFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordBatch records the size of a batch calculation
func (c *Collector) RecordBatch(size int) {
	c.BatchSize.Observe(float64(size))
}

// RecordReplications adds replicated farms
func (c *Collector) RecordReplications(n int) {
	c.ReplicationsTotal.Add(float64(n))
}

// RecordRequest counts an API request
func (c *Collector) RecordRequest(route, status string) {
	c.APIRequestsTotal.WithLabelValues(route, status).Inc()
}
