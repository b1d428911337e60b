package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the body served by the health endpoint.
type HealthStatus struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks,omitempty"`
	LastChecked time.Time         `json:"last_checked"`
	Uptime      string            `json:"uptime"`
	Version     string            `json:"version"`
}

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// Health caches the probe results for a few seconds so a busy load balancer
// does not hammer the backends.
type Health struct {
	version string
	checks  map[string]Checker
	ttl     time.Duration
	started time.Time
	now     func() time.Time

	mu       sync.Mutex
	last     HealthStatus
	lastCode int
	lastAt   time.Time
}

func NewHealth(version string, checks map[string]Checker) *Health {
	return &Health{
		version: version,
		checks:  checks,
		ttl:     5 * time.Second,
		started: time.Now(),
		now:     time.Now,
	}
}

func (h *Health) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := h.evaluate(c.Request.Context())
		c.JSON(code, status)
	}
}

func (h *Health) evaluate(ctx context.Context) (HealthStatus, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if !h.lastAt.IsZero() && now.Sub(h.lastAt) < h.ttl {
		return h.last, h.lastCode
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:      "ok",
		LastChecked: now,
		Uptime:      now.Sub(h.started).Round(time.Second).String(),
		Version:     h.version,
	}
	code := http.StatusOK
	if len(h.checks) > 0 {
		status.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status.Checks[name] = err.Error()
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}

	h.last, h.lastCode, h.lastAt = status, code, now
	return status, code
}
