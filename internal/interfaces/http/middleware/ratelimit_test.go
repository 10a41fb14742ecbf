package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
		assert.True(t, limiter.Allow("other"))
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := NewRateLimiter(1, 50*time.Millisecond)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))
		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("client"))
	})

	t.Run("remaining", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)
		defer limiter.Stop()

		assert.Equal(t, 5, limiter.Remaining("client"))
		limiter.Allow("client")
		limiter.Allow("client")
		assert.Equal(t, 3, limiter.Remaining("client"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)
		defer limiter.Stop()

		var wg sync.WaitGroup
		var allowed atomic.Int32
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(100), allowed.Load())
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Millisecond)
		limiter.Stop()
		limiter.Stop()
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()

	actorA := shared.NewActor(uuid.New(), shared.RoleViewer)
	actorB := shared.NewActor(uuid.New(), shared.RoleViewer)
	current := actorA

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ActorKey, current)
		c.Next()
	})
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		return w
	}

	w := serve()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, serve().Code)

	w = serve()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, w).Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	current = actorB
	assert.Equal(t, http.StatusOK, serve().Code)
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string { return c.GetHeader("X-Client") }))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tc := range []struct {
		client string
		want   int
	}{
		{"a", http.StatusOK},
		{"a", http.StatusTooManyRequests},
		{"b", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Client", tc.client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.client)
	}
}
