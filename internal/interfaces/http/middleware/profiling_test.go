package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_AttachesLabels(t *testing.T) {
	actor := shared.NewActor(uuid.New(), shared.RoleProduction)
	labels := map[string]string{}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ActorKey, actor)
		c.Next()
	})
	router.Use(Profiling(DefaultProfilingConfig()))
	router.POST("/api/v1/production-requests/:id/complete", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/production-requests/"+uuid.NewString()+"/complete", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "POST", labels[telemetry.ProfilingLabelMethod])
	assert.Equal(t, "/api/v1/production-requests/:id/complete", labels[telemetry.ProfilingLabelRoute])
	assert.Equal(t, "production-requests", labels[telemetry.ProfilingLabelResource])
	assert.Equal(t, "production", labels[telemetry.ProfilingLabelActorRole])
}

func TestProfiling_SkipsAndDisabled(t *testing.T) {
	hasLabels := func(ctx context.Context) bool {
		found := false
		pprof.ForLabels(ctx, func(string, string) bool {
			found = true
			return false
		})
		return found
	}

	for name, cfg := range map[string]ProfilingConfig{
		"skip path": DefaultProfilingConfig(),
		"disabled":  {Enabled: false},
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(Profiling(cfg))
			router.GET("/health", func(c *gin.Context) {
				assert.False(t, hasLabels(c.Request.Context()))
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestResourceFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"", ""},
		{"/api/v1/products/:id", "products"},
		{"/api/v1/products/:id/bom", "products"},
		{"/api/v2/orders/:order_ref/reservations", "orders"},
		{"/health", "health"},
		{"/api/v1/:id", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resourceFromRoute(tt.route), tt.route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("products"))
}
