package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brk3/habitledger/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_http_requests_total",
			Help: "API requests served, by chi route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habits_http_request_duration_seconds",
			Help:    "Time spent serving API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	userRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_user_requests_total",
			Help: "Authenticated API requests, by user and route pattern",
		},
		[]string{"user_id", "route", "method"},
	)

	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_auth_events_total",
			Help: "Login, token verification and API key events",
		},
		[]string{"event_type", "result", "provider"},
	)
)

// routePattern is the matched chi pattern, e.g. /days/{date}, so dates and
// habit ids never become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{routePattern(r), r.Method, strconv.Itoa(status)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// userAwareMetricsMiddleware runs behind authMiddleware, which puts the
// caller in the request context.
func (s *Server) userAwareMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if user, ok := r.Context().Value(userCtxKey{}).(*User); ok {
			userRequestsTotal.WithLabelValues(user.UserID, routePattern(r), r.Method).Inc()
		}
	})
}

// RecordAuthEvent counts one authentication outcome. provider is the OIDC
// provider id, or "apikey" for API key checks.
func RecordAuthEvent(eventType, result, provider string) {
	authEventsTotal.WithLabelValues(eventType, result, provider).Inc()
	logger.Debug("Auth event", "type", eventType, "result", result, "provider", provider)
}
