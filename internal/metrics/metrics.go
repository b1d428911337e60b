package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. A nil *Metrics or one built without a
// registerer records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	auditWrites   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	loginRejected prometheus.Counter
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "Lifecycle operations by name and result.",
		}, []string{"operation", "result"}),
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_audit_writes_total",
			Help: "Audit log writes by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_rate_limited_total",
			Help: "Sign-in attempts rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(m.operations, m.auditWrites, m.httpRequests, m.httpDuration, m.loginRejected)
	return m
}

func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.operations.WithLabelValues(normalizeLabel(operation), result).Inc()
}

func (m *Metrics) ObserveAuditWrite(err error) {
	if m == nil || m.auditWrites == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.auditWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncLoginRejected() {
	if m == nil || m.loginRejected == nil {
		return
	}
	m.loginRejected.Inc()
}

// Handler exposes the gatherer in the prometheus text format.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
