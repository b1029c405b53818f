package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

// unmatchedPath labels requests no route matched, so arbitrary URLs cannot
// create new series.
const unmatchedPath = "unmatched"

// Metrics holds the server collectors. They are registered on an injected
// registry so tests can use a fresh one.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	signins  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insightdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insightdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		signins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insightdesk_signin_attempts_total",
				Help: "Finished sign-in attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.signins)
	return m
}

// ObserveSignin matches the AuthGateway.OnFinish callback.
func (m *Metrics) ObserveSignin(provider string, a *services.Attempt) {
	m.signins.WithLabelValues(provider, string(a.State())).Inc()
}

// Middleware records request count and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrapResponseWriter(w)

		next.ServeHTTP(ww, r)

		path := unmatchedPath
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(ww.status)).Inc()
		m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
