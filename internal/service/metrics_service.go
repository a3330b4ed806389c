package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes recorded by MetricsService.
const (
	GenerationOutcomeComplete = "complete"
	GenerationOutcomePartial  = "partial"
	GenerationOutcomeInvalid  = "invalid"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the generator.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	placedEntries      prometheus.Histogram
	droppedDemand      prometheus.Counter
	proposalLookups    *prometheus.CounterVec
	exportJobs         *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_generations_total",
			Help: "Timetable generation runs by outcome",
		}, []string{"outcome"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_generation_duration_seconds",
			Help:    "Wall time of a generation run",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		placedEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_placed_entries",
			Help:    "Entries placed per generation run",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8),
		}),
		droppedDemand: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_dropped_demand_total",
			Help: "Weekly lessons the generator could not place",
		}),
		proposalLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_proposal_lookups_total",
			Help: "Proposal store lookups by result",
		}, []string{"result"}),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_export_jobs_total",
			Help: "Export job state changes by format and status",
		}, []string{"format", "status"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.generations,
		m.generationDuration,
		m.placedEntries,
		m.droppedDemand,
		m.proposalLookups,
		m.exportJobs,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGeneration records one generator run.
func (m *MetricsService) ObserveGeneration(placed, dropped int, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := GenerationOutcomeComplete
	if dropped > 0 {
		outcome = GenerationOutcomePartial
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
	m.placedEntries.Observe(float64(placed))
	m.droppedDemand.Add(float64(dropped))
}

// ObserveInvalidGeneration counts requests rejected before generation.
func (m *MetricsService) ObserveInvalidGeneration() {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(GenerationOutcomeInvalid).Inc()
}

// RecordProposalLookup counts proposal store hits and misses.
func (m *MetricsService) RecordProposalLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.proposalLookups.WithLabelValues(result).Inc()
}

// RecordExportJob counts export job state changes.
func (m *MetricsService) RecordExportJob(format, status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, status).Inc()
}
