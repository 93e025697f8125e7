package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genai/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
	PredictStream(ctx context.Context, req types.PredictRequest, w io.Writer, flush func()) error
	CountTokens(text string) (int, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Post("/v1/predict", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodePredict(w, r)
		if !ok {
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		logStart(r, lvl, "predict")
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Predict(ctx, req)
		if err != nil {
			logEnd(r, lvl, writeError(w, err), start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logEnd(r, lvl, http.StatusOK, start, nil)
	})

	r.Post("/v1/predict/stream", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodePredict(w, r)
		if !ok {
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		logStart(r, lvl, "stream")
		nw := &ndjsonWriter{w: w, start: start}
		writer := io.Writer(nw)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(nw, &loggingLineWriter{rid: middleware.GetReqID(r.Context())})
		}
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		err := svc.PredictStream(ctx, req, writer, flush)
		switch {
		case err == nil:
			observeStream(streamCompleted)
			logEnd(r, lvl, http.StatusOK, start, nil)
		case nw.started:
			// Headers are out; the client went away mid-stream.
			observeStream(streamDisconnected)
			logEnd(r, lvl, http.StatusOK, start, err)
		default:
			observeStream(streamRejected)
			logEnd(r, lvl, writeError(w, err), start, err)
		}
	})

	r.Post("/v1/tokens/count", func(w http.ResponseWriter, r *http.Request) {
		var req types.CountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		n, err := svc.CountTokens(req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.CountResponse{Count: n})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("draining"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON checks the content type, limits the body and decodes it into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies are reported as invalid JSON as well.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func decodePredict(w http.ResponseWriter, r *http.Request) (types.PredictRequest, bool) {
	var req types.PredictRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return req, false
	}
	if req.MaxOutputTokens < 0 {
		writeJSONError(w, http.StatusBadRequest, "max_output_tokens must not be negative")
		return req, false
	}
	return req, true
}

// ndjsonWriter commits the NDJSON content type and a 200 status on the first
// write, so errors raised before any output still get a proper status. Each
// Write carries exactly one line.
type ndjsonWriter struct {
	w       http.ResponseWriter
	start   time.Time
	started bool
}

func (n *ndjsonWriter) Write(p []byte) (int, error) {
	if !n.started {
		n.started = true
		n.w.Header().Set("Content-Type", "application/x-ndjson")
		n.w.WriteHeader(http.StatusOK)
		if !n.start.IsZero() {
			streamFirstLineSeconds.Observe(time.Since(n.start).Seconds())
		}
	}
	streamLinesTotal.Inc()
	return n.w.Write(p)
}
