package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"promptcraft/app/config"
	"promptcraft/internal/infrastructure/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	unmatchedRoute  = "unmatched"
)

type ctxKey int

const loggerKey ctxKey = iota

// LoggerFromContext returns the request-scoped logger, or fallback.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return fallback
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}

// routeLabel names a request by its route template so metric labels stay
// bounded. Paths that match no route share one label.
func routeLabel(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if router.Match(r, &match) && match.MatchErr == nil && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	if match.MatchErr == mux.ErrMethodMismatch {
		return r.URL.Path
	}
	return unmatchedRoute
}

// requestMiddleware tags each request with an id, records metrics and an
// access log line, and turns panics into a 500 with a fixed detail. It wraps
// the whole router so 404 and 405 responses go through it too.
func requestMiddleware(router *mux.Router, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			reqLogger := logger.With("request_id", requestID)
			r = r.WithContext(context.WithValue(r.Context(), loggerKey, reqLogger))

			path := routeLabel(router, r)

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if p := recover(); p != nil {
					metrics.IncError("http", "panic")
					reqLogger.Error("panic in handler", "panic", p, "path", path)
					if !rw.wroteHeader {
						writeDetail(rw, http.StatusInternalServerError, detailGenerationFailed)
					}
				}

				duration := time.Since(start)
				metrics.ObserveHTTPRequest(r.Method, path, rw.status, duration)
				reqLogger.Info("http request",
					"method", r.Method,
					"path", path,
					"status", rw.status,
					"duration", duration,
				)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// NewRouter builds the full public HTTP handler: routes, request middleware
// and CORS.
func NewRouter(h *PromptHandler, cors config.CORSConfig, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return corsHandler(cors, requestMiddleware(r, logger)(r))
}
