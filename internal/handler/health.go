package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/health"
)

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	checker *health.Checker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Register mounts /healthz and /readyz on r.
func (h *HealthHandler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}

// Healthz reports that the process is up.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz runs every readiness probe; 503 when any fails.
func (h *HealthHandler) Readyz(c *gin.Context) {
	report := h.checker.CheckAll(c.Request.Context())
	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
