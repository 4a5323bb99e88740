package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMetricsCollector_Counters(t *testing.T) {
	m := NewMetricsCollector()

	m.ObserveCascadeAttempt("ai_assisted", "empty")
	m.ObserveCascadeAttempt("standard", "hit")
	m.ObserveCascadeAttempt("standard", "hit")
	m.ObserveInterpretation("ok", 2*time.Second)
	m.ObserveUpstreamCall("spoonacular", "search", "200", 300*time.Millisecond)
	m.ObserveInteraction("cook")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cascadeAttempts.WithLabelValues("standard", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cascadeAttempts.WithLabelValues("ai_assisted", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.interpretations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("spoonacular", "search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.interactions.WithLabelValues("cook")))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector()
	m.ObserveHTTPRequest(http.MethodPost, "/recommend", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",route="/recommend",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestMeterProvider_ExportsThroughRegistry(t *testing.T) {
	m := NewMetricsCollector()
	mp, err := NewMeterProvider(m, "savvy", "test", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	counter, err := mp.Meter("savvy/test").Int64Counter("savvy.generation.cache.requests")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "savvy_generation_cache_requests")
	// the collector's own metrics are still served
	assert.Contains(t, body, "go_goroutines")
}
