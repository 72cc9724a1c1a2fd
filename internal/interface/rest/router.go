package rest

import (
	"net/http"
	"time"

	"agency-report-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// NewRouter mounts the report API plus /health and, when given, /metrics.
// A non-nil limiter throttles the API routes only.
func NewRouter(h *Handler, metricsHandler http.Handler, limiter *rate.Limiter, log logger.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(rateLimit(limiter, log))
		}
		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.SalesReport)
			r.Get("/customers", h.CustomerReport)
			r.Get("/employees", h.EmployeePerformance)
		})
		r.Get("/logs", h.ListLogs)
		r.Get("/logs/stats", h.LogStats)
	})

	return router
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// rateLimit rejects requests once the shared limiter runs dry
func rateLimit(limiter *rate.Limiter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("Rate limit exceeded", "path", r.URL.Path, "remoteAddr", r.RemoteAddr)
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
