package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"genai/internal/manager"
	"genai/pkg/types"
)

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "202")); got < 1 {
		t.Fatalf("requests_total for route pattern = %v", got)
	}
}

func TestMetricsEndpoint_ExposesHTTPFamily(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	if !bytes.Contains(mrr.Body.Bytes(), []byte("genai_http_requests_total")) {
		t.Fatalf("metrics missing genai_http_requests_total")
	}
}

func TestBackpressureCounted(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("admission"))
	postJSON(t, NewMux(&mockService{err: manager.ErrTooBusy("queue full")}), "/v1/predict", `{"prompt":"hi"}`)
	if got := testutil.ToFloat64(backpressureTotal.WithLabelValues("admission")); got != before+1 {
		t.Fatalf("backpressure_total{admission} = %v want %v", got, before+1)
	}
	IncrementBackpressure("")
	if got := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified")); got < 1 {
		t.Fatalf("empty reason not labeled unspecified")
	}
}

func TestStatusRecorder_ForwardsFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rr, status: http.StatusOK}
	sr.WriteHeader(http.StatusCreated)
	sr.Flush()
	if sr.status != http.StatusCreated || !rr.Flushed {
		t.Fatalf("status=%d flushed=%v", sr.status, rr.Flushed)
	}
}

func TestStreamMetrics_LinesAndOutcomes(t *testing.T) {
	lines := testutil.ToFloat64(streamLinesTotal)
	completed := testutil.ToFloat64(streamsTotal.WithLabelValues(streamCompleted))
	svc := &mockService{lines: []types.StreamLine{{Text: "a"}, {Text: "b"}, {Done: true, FinishReason: "stop"}}}
	if w := postJSON(t, NewMux(svc), "/v1/predict/stream", `{"prompt":"hi"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := testutil.ToFloat64(streamLinesTotal); got != lines+3 {
		t.Fatalf("stream lines = %v want %v", got, lines+3)
	}
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues(streamCompleted)); got != completed+1 {
		t.Fatalf("completed streams = %v", got)
	}

	disconnected := testutil.ToFloat64(streamsTotal.WithLabelValues(streamDisconnected))
	svc = &mockService{lines: []types.StreamLine{{Text: "a"}}, streamErr: context.Canceled}
	postJSON(t, NewMux(svc), "/v1/predict/stream", `{"prompt":"hi"}`)
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues(streamDisconnected)); got != disconnected+1 {
		t.Fatalf("disconnected streams = %v", got)
	}

	rejected := testutil.ToFloat64(streamsTotal.WithLabelValues(streamRejected))
	linesBefore := testutil.ToFloat64(streamLinesTotal)
	svc = &mockService{err: manager.ErrTooBusy("queue full")}
	if w := postJSON(t, NewMux(svc), "/v1/predict/stream", `{"prompt":"hi"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues(streamRejected)); got != rejected+1 {
		t.Fatalf("rejected streams = %v", got)
	}
	if got := testutil.ToFloat64(streamLinesTotal); got != linesBefore {
		t.Fatalf("rejected stream wrote lines")
	}
}
