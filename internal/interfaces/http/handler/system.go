package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/dto"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Health statuses
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusDown     = "down"
)

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	timeout   time.Duration
	critical  map[string]HealthCheck
	optional  map[string]HealthCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{
		version:   version,
		startTime: time.Now(),
		timeout:   2 * time.Second,
		critical:  map[string]HealthCheck{},
		optional:  map[string]HealthCheck{},
	}
}

// WithCritical adds a check whose failure makes the service unready
func (h *SystemHandler) WithCritical(name string, check HealthCheck) *SystemHandler {
	h.critical[name] = check
	return h
}

// WithOptional adds a check whose failure only degrades the service.
// The factor cache is one: prices fall back to the default factors.
func (h *SystemHandler) WithOptional(name string, check HealthCheck) *SystemHandler {
	h.optional[name] = check
	return h
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live handles GET /health/live
func (h *SystemHandler) Live(c *gin.Context) {
	h.Success(c, gin.H{"status": HealthStatusOK})
}

// Health handles GET /health and GET /health/ready. A failed critical
// check answers 503; a failed optional check answers 200 "degraded".
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    HealthStatusOK,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    map[string]string{},
	}

	for _, name := range sortedNames(h.optional) {
		if err := h.optional[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = HealthStatusDegraded
		} else {
			resp.Checks[name] = HealthStatusOK
		}
	}
	for _, name := range sortedNames(h.critical) {
		if err := h.critical[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = HealthStatusDown
		} else {
			resp.Checks[name] = HealthStatusOK
		}
	}

	if resp.Status == HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}

func sortedNames(checks map[string]HealthCheck) []string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
