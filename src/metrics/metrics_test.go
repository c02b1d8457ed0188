package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tariff-observer/src/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBuild(t *testing.T) {
	m := New()
	d := &models.MDashboard{
		GeneratedAt: time.Unix(1700000000, 0),
		Panels:      map[string]*models.MPanelView{"a": {}, "b": {}},
		Sources: []models.MSourceStatus{
			{Name: "trade", Loaded: true},
			{Name: "csi", Loaded: true, FromCache: true},
			{Name: "down"},
		},
		Diagnostics: []models.MDiagnostic{
			{Kind: models.DiagFetch, Severity: models.SeverityWarning},
			{Kind: models.DiagParse, Severity: models.SeverityWarning},
			{Kind: models.DiagParse, Severity: models.SeverityWarning},
		},
		Metrics: models.MProcessingMetrics{CacheHits: 1},
	}
	m.ObserveBuild(d, 250*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceLoads.WithLabelValues("trade", "loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceLoads.WithLabelValues("csi", "cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceLoads.WithLabelValues("down", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("parse", "warning")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PanelsBuilt))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastBuild))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.CacheHits.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tariff_observer_fetch_cache_hits_total 1")
}
