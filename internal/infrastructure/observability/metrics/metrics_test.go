package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

func TestMetrics_PipelineCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.EventDispatched("metrics_update")
	m.EventDispatched("metrics_update")
	m.EventDropped("unknown_kind")
	m.IntentRecorded(valueobject.ActionScaleUp)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsDispatched.WithLabelValues("metrics_update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped.WithLabelValues("unknown_kind")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntentsRecorded.WithLabelValues("scale_up")))
}

func TestMetrics_TransportStateIsOneHot(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransportStateChanged(valueobject.TransportConnected)
	m.TransportStateChanged(valueobject.TransportPolling)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.TransportState.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransportState.WithLabelValues("polling")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransportChanges.WithLabelValues("connected")))
}

func TestMetrics_Middleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export?format=xml", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/v1/export/*", "GET", "400")))
}

func TestNormalizeRoute(t *testing.T) {
	tests := map[string]string{
		"/ws":                    "/ws",
		"/api/v1/export":         "/api/v1/export/*",
		"/api/v1/export/archive": "/api/v1/export/*",
		"/api/v1/transport":      "/api/v1/*",
		"/favicon.ico":           "other",
		"/metrics":               "/metrics",
	}

	for path, want := range tests {
		if got := normalizeRoute(path); got != want {
			t.Errorf("normalizeRoute(%q) = %q, want %q", path, got, want)
		}
	}
}
