package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptcraft_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptcraft_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	HTTPErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptcraft_http_errors_total",
			Help: "Total number of HTTP responses with status >= 400.",
		},
		[]string{"method", "path", "status"},
	)

	// LLM
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptcraft_llm_requests_total",
			Help: "Number of LLM requests by model",
		},
		[]string{"model"},
	)
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptcraft_llm_request_duration_seconds",
			Help:    "Duration of LLM generation calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s..64s
		},
		[]string{"model"},
	)

	// Generation outcomes
	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptcraft_generations_total",
			Help: "Prompt generations by result",
		},
		[]string{"result"}, // ok|invalid_input|malformed|shape|upstream
	)
	PromptPlaceholders = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptcraft_prompt_placeholders",
			Help:    "Number of placeholders in generated context fields",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
	PromptLintScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptcraft_prompt_lint_score",
			Help:    "Lint score of generated prompts",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptcraft_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// HTTP
		HTTPRequests,
		HTTPRequestDuration,
		HTTPErrors,
		// LLM
		LLMRequests,
		LLMRequestDuration,
		// Generation
		Generations,
		PromptPlaceholders,
		PromptLintScore,
		// Errors
		Errors,
	)
}

// NewMetricsServer returns a server exposing /metrics on addr.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// StartMetricsServer serves until ctx is done.
func StartMetricsServer(ctx context.Context, srv *http.Server) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// HTTP
func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	statusLabel := strconv.Itoa(status)
	HTTPRequests.WithLabelValues(method, path).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, statusLabel).Observe(d.Seconds())
	if status >= 400 {
		HTTPErrors.WithLabelValues(method, path, statusLabel).Inc()
	}
}

// LLM
func IncLLMRequest(model string) {
	LLMRequests.WithLabelValues(model).Inc()
}

func ObserveLLMDuration(model string, d time.Duration) {
	LLMRequestDuration.WithLabelValues(model).Observe(d.Seconds())
}

// Generation
func IncGeneration(result string) {
	Generations.WithLabelValues(result).Inc()
}

func ObservePromptQuality(placeholders, lintScore int) {
	PromptPlaceholders.Observe(float64(placeholders))
	PromptLintScore.Observe(float64(lintScore))
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
