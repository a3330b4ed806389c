package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveGeneration(40, 0, 2*time.Millisecond)
	m.ObserveGeneration(30, 3, time.Millisecond)
	m.ObserveInvalidGeneration()
	m.RecordProposalLookup(true)
	m.RecordProposalLookup(false)
	m.RecordProposalLookup(false)
	m.RecordExportJob("csv", "FINISHED")
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(GenerationOutcomeComplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(GenerationOutcomePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(GenerationOutcomeInvalid)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.droppedDemand))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.proposalLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportJobs.WithLabelValues("csv", "FINISHED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/health", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timetable_generations_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveGeneration(1, 0, time.Millisecond)
		m.RecordProposalLookup(true)
		m.RecordExportJob("pdf", "FAILED")
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
