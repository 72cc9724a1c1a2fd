package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ReportsGenerated *prometheus.CounterVec
	ReportsFailed    *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec
	SourceFailures   *prometheus.CounterVec
	PartialMerges    prometheus.Counter
	TruncatedScans   *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg. A nil reg uses
// the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "The total number of reports generated",
		}, []string{"report"}),
		ReportsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_failed_total",
			Help:      "The total number of report requests that failed",
		}, []string{"report"}),
		ReportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time taken to build a report",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "The total number of failed source fetches",
		}, []string{"source"}),
		PartialMerges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_merges_total",
			Help:      "The total number of merges that omitted at least one source",
		}),
		TruncatedScans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_scans_total",
			Help:      "The total number of scans stopped at their record cap",
		}, []string{"scan"}),
	}
}

// NewNopMetrics returns metrics registered on a private registry
func NewNopMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
