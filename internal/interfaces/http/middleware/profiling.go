package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig skips the health probes.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/health/live", "/health/ready"},
	}
}

// Profiling attaches the route pattern and method as Pyroscope labels to
// the handler's goroutine.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(cfg.SkipPaths, route) {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:     route,
			telemetry.ProfilingLabelOperation: c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
