package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/eastern-erp/eastern-erp/internal/telemetry"
)

func newMetricsRouter() *gin.Engine {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func httpCounterValue(t *testing.T, method, path, status string) float64 {
	t.Helper()
	var pb dto.Metric
	m := telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status)
	if err := m.(prometheus.Metric).Write(&pb); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return pb.GetCounter().GetValue()
}

func histogramSampleCount(t *testing.T, method, path string) uint64 {
	t.Helper()
	var pb dto.Metric
	h := telemetry.HTTPRequestDuration.WithLabelValues(method, path)
	if err := h.(prometheus.Metric).Write(&pb); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	r := newMetricsRouter()

	before := httpCounterValue(t, "GET", "/ping", "200")
	durBefore := histogramSampleCount(t, "GET", "/ping")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if got := httpCounterValue(t, "GET", "/ping", "200"); got != before+1 {
		t.Errorf("http_requests_total = %v, want %v", got, before+1)
	}
	if got := histogramSampleCount(t, "GET", "/ping"); got != durBefore+1 {
		t.Errorf("http_request_duration_seconds sample count = %d, want %d", got, durBefore+1)
	}
}

func TestMetricsMiddleware_RecordsErrorStatus(t *testing.T) {
	r := newMetricsRouter()

	before := httpCounterValue(t, "GET", "/boom", "500")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if got := httpCounterValue(t, "GET", "/boom", "500"); got != before+1 {
		t.Errorf("http_requests_total{status=500} = %v, want %v", got, before+1)
	}
}

func TestMetricsMiddleware_NoRouteFallback(t *testing.T) {
	r := newMetricsRouter()

	before := httpCounterValue(t, "GET", "<no-route>", "404")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/does/not/exist", nil)
	r.ServeHTTP(w, req)

	if got := httpCounterValue(t, "GET", "<no-route>", "404"); got != before+1 {
		t.Errorf("http_requests_total{path=<no-route>} = %v, want %v", got, before+1)
	}
}
