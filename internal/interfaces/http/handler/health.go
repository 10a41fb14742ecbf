package handler

import (
	"net/http"
	"time"

	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves the liveness and readiness checks
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health. It only reports that the process is serving.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready handles GET /ready, failing with 503 while the database is unreachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnready, "Database is unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"time":     time.Now().Format(time.RFC3339),
		"database": "ok",
	})
}
