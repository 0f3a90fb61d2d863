// Package metrics provides Prometheus metrics for pagescore runs and the
// HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/pagescore/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "pagescore"

// Metrics holds all Prometheus collectors for pagescore.
type Metrics struct {
	// Report metrics
	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	Pages            prometheus.Gauge
	AverageScore     prometheus.Gauge
	PagesByTier      *prometheus.GaugeVec
	IssuesBySeverity *prometheus.GaugeVec
	PageErrorsTotal  prometheus.Counter
	LastRunTimestamp prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Each caller passes its own registry, so tests never share state.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.RunsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "runs_total",
		Help:      "Total number of compiled reports",
	})

	m.RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "run_duration_seconds",
		Help:      "Time taken to compile a report",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	m.Pages = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "pages",
		Help:      "Number of pages in the latest report",
	})

	m.AverageScore = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "average_score",
		Help:      "Average page score of the latest report",
	})

	m.PagesByTier = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "pages_by_tier",
		Help:      "Number of pages per optimization tier in the latest report",
	}, []string{"tier"})

	m.IssuesBySeverity = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "issues",
		Help:      "Number of issues per severity in the latest report",
	}, []string{"severity"})

	m.PageErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "page_errors_total",
		Help:      "Total number of pages compiled with a render or resolver failure",
	})

	m.LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "report",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the latest report",
	})

	m.HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status"})

	m.HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"endpoint", "method"})

	return m
}

// RecordReport updates the report metrics from a compiled report.
func (m *Metrics) RecordReport(report *model.Report, elapsed time.Duration) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(elapsed.Seconds())

	stats := report.Stats
	m.Pages.Set(float64(stats.TotalPages))
	m.AverageScore.Set(float64(stats.AverageScore))
	m.PagesByTier.WithLabelValues(model.TierOptimised.FilterKey()).Set(float64(stats.FilterCounts.Optimized))
	m.PagesByTier.WithLabelValues(model.TierNeedsImprovement.FilterKey()).Set(float64(stats.FilterCounts.NeedsWork))
	m.PagesByTier.WithLabelValues(model.TierCritical.FilterKey()).Set(float64(stats.FilterCounts.Critical))

	var tally model.ViolationTally
	errored := 0
	for _, entry := range report.Pages {
		tally.Critical += entry.Tally.Critical
		tally.Serious += entry.Tally.Serious
		tally.Moderate += entry.Tally.Moderate
		tally.Minor += entry.Tally.Minor
		if entry.Error != "" {
			errored++
		}
	}
	for _, s := range []model.Severity{model.SeverityCritical, model.SeveritySerious, model.SeverityModerate, model.SeverityMinor} {
		m.IssuesBySeverity.WithLabelValues(s.String()).Set(float64(tally.Count(s)))
	}
	m.PageErrorsTotal.Add(float64(errored))

	if !report.GeneratedAt.IsZero() {
		m.LastRunTimestamp.Set(float64(report.GeneratedAt.Unix()))
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(endpoint, method string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}
