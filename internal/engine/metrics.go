package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "genai",
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Total number of finished generations by finish reason",
		},
		[]string{"finish_reason"},
	)

	tokensGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "genai",
			Subsystem: "engine",
			Name:      "tokens_generated_total",
			Help:      "Total number of decode steps that produced a token",
		},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "genai",
			Subsystem: "engine",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a generation from prefill to the final flush",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "genai",
			Subsystem: "engine",
			Name:      "active_sessions",
			Help:      "Open sessions across all engines",
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, tokensGenerated, generationDuration, activeSessions)
}

func observeGeneration(reason FinishReason, tokens int, dur time.Duration) {
	generationsTotal.WithLabelValues(string(reason)).Inc()
	tokensGenerated.Add(float64(tokens))
	generationDuration.Observe(dur.Seconds())
}

// zlog is the package logger; silent until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs the structured logger used for session lifecycle events.
func SetLogger(l zerolog.Logger) { zlog = l }
