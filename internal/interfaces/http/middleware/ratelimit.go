package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter keyed by caller
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	remaining int
	startedAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window and
// starts its cleanup goroutine. Call Stop to release it.
func NewRateLimiter(limit int, w time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(2 * w)
	return rl
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, c := range rl.clients {
				if now.Sub(c.startedAt) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow consumes one request for key and reports whether it fits the window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[key]
	if !ok || now.Sub(c.startedAt) >= rl.window {
		rl.clients[key] = &window{remaining: rl.limit - 1, startedAt: now}
		return rl.limit > 0
	}
	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// Remaining returns how many requests key may still make in its window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok || time.Since(c.startedAt) >= rl.window {
		return rl.limit
	}
	return c.remaining
}

// RateLimit limits authenticated callers by actor ID and anonymous ones by IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if actor, ok := GetActor(c); ok {
			return "actor:" + actor.ID.String()
		}
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByKey limits requests using a custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later.", GetRequestID(c)))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
