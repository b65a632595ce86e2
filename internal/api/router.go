package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/wonny/vreflex/backend/internal/api/handlers"
	"github.com/wonny/vreflex/backend/pkg/logger"
	"github.com/wonny/vreflex/backend/pkg/metrics"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the HTTP router. rec may be nil.
// ⭐ SSOT: routes are declared here only
func NewRouter(
	summaryHandler *handlers.SummaryHandler,
	energyDataHandler *handlers.EnergyDataHandler,
	rec *metrics.Recorder,
	allowedOrigins []string,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if rec != nil {
		r.Handle("/metrics", rec.Handler()).Methods("GET")
	}

	// API routes are registered on the root router so a method mismatch is a 405, not a 404.

	// Energy data endpoints
	r.HandleFunc("/api/energy-data", energyDataHandler.ListReadings).Methods("GET")
	r.HandleFunc("/api/energy-data/chart-data", summaryHandler.ChartData).Methods("GET")

	// Summary endpoints
	r.HandleFunc("/api/summaries/backfill", summaryHandler.Backfill).Methods("POST")
	r.HandleFunc("/api/summaries/{date}", summaryHandler.GetSummary).Methods("GET")

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		gorillahandlers.ExposedHeaders([]string{RequestIDHeader}),
	)

	return cors(r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "vreflex-api",
	})
}

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"request_id": r.Header.Get(RequestIDHeader),
				"duration":   time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": r.Header.Get(RequestIDHeader),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
