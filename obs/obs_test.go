package obs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelFallback(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "not-a-level")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestLogger_LogsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger{Logger: logger}.Middleware)
	r.Get("/api/scenarios/{id}/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/scenarios/partner-a/report", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["message"])
	assert.Equal(t, "/api/scenarios/{id}/report", entry["route"])
	assert.Equal(t, "/api/scenarios/partner-a/report", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewHTTPMetrics("commission", registry)

	r := chi.NewRouter()
	r.Use(HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/healthz", "204")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ReqDur))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestMetrics_ReRegistrationReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewEngineMetrics("commission", registry)
	second := NewEngineMetrics("commission", registry)

	second.ObserveCalculation(nil, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(first.FloorApplied))
}

func TestEngineMetrics(t *testing.T) {
	m := NewEngineMetrics("commission", prometheus.NewRegistry())

	m.ObserveCalculation(nil, false)
	m.ObserveCalculation(errors.New("boom"), true)
	m.ObserveReport(nil, 7, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("calculate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("calculate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("report", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FloorApplied))

	var nilMetrics *EngineMetrics
	assert.NotPanics(t, func() { nilMetrics.ObserveReport(nil, 1, 0) })
}
