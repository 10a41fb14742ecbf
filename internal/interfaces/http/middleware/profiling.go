package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Profiling tags CPU samples taken while serving a request with pyroscope
// labels: resource, route, method and actor_role. It belongs after JWT
// authentication so the role is known.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)
	labels[telemetry.ProfilingLabelMethod] = c.Request.Method

	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if resource := resourceFromRoute(route); resource != "" {
		labels[telemetry.ProfilingLabelResource] = resource
	}
	if actor, ok := GetActor(c); ok {
		labels[telemetry.ProfilingLabelActorRole] = actor.Role.String()
	}
	return labels
}

// resourceFromRoute returns the first static segment after the API prefix:
// "/api/v1/production-requests/:id/complete" gives "production-requests".
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
