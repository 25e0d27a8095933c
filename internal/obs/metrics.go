package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Surface labels for operation telemetry.
const (
	SurfaceREST    = "rest"
	SurfaceGraphQL = "graphql"
)

// Outcome labels for operation telemetry.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

var (
	activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_connections",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts.",
		},
		[]string{"status", "username"},
	)

	operationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operation_requests_total",
			Help: "Protected operation invocations by surface and outcome.",
		},
		[]string{"surface", "operation", "outcome"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "operation_duration_seconds",
			Help:    "Protected operation latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"surface", "operation", "outcome"},
	)
)

var initOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more
// than once; only the first call registers.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			activeConnections,
			httpRequestsTotal,
			httpRequestDuration,
			loginAttempts,
			operationRequests,
			operationDuration,
		)
	})
}

// Handler exposes the accumulated metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordLoginAttempt counts one login outcome for the given username.
func RecordLoginAttempt(status, username string) {
	loginAttempts.WithLabelValues(status, username).Inc()
}

// RecordOperation counts and times one protected operation invocation.
func RecordOperation(surface, operation, outcome string, seconds float64) {
	operationRequests.WithLabelValues(surface, operation, outcome).Inc()
	operationDuration.WithLabelValues(surface, operation, outcome).Observe(seconds)
}

// OperationCount reads back the operation counter. Test hook.
func OperationCount(surface, operation, outcome string) float64 {
	return testutil.ToFloat64(operationRequests.WithLabelValues(surface, operation, outcome))
}

// LoginAttemptCount reads back the login counter. Test hook.
func LoginAttemptCount(status, username string) float64 {
	return testutil.ToFloat64(loginAttempts.WithLabelValues(status, username))
}

// Instrument wraps an http.Handler with request counting, latency and
// in-flight gauges.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		activeConnections.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		activeConnections.Dec()
	})
}

// CanonicalPath collapses record identifiers so metric cardinality stays
// bounded: /api/marks/<id> and /api/marks/<id>/download fold to templates.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "marks" {
		switch {
		case len(parts) == 3:
			return "/api/marks/:id"
		case len(parts) == 4 && parts[3] == "download":
			return "/api/marks/:id/download"
		}
	}
	return path
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
