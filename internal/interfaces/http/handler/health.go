package handler

import (
	"github.com/gin-gonic/gin"
)

// HealthHandler reports process liveness and dependency reachability.
type HealthHandler struct {
	BaseHandler
	pingDB       func() error
	pingSnapshot func() error
}

// NewHealthHandler creates a health handler. Either ping may be nil when the
// process runs without that dependency.
func NewHealthHandler(pingDB, pingSnapshot func() error) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, pingSnapshot: pingSnapshot}
}

// Check handles GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	status := gin.H{"status": "ok"}
	degraded := false
	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			degraded = true
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	if h.pingSnapshot != nil {
		if err := h.pingSnapshot(); err != nil {
			degraded = true
			status["snapshot_store"] = "unreachable"
		} else {
			status["snapshot_store"] = "ok"
		}
	}
	if degraded {
		status["status"] = "degraded"
		c.JSON(503, status)
		return
	}
	h.Success(c, status)
}
