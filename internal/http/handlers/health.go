package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness unconditionally and readiness based on the
// dependencies it was given ping functions for.
type HealthHandler struct {
	pings map[string]PingFunc
}

func NewHealthHandler(pings map[string]PingFunc) *HealthHandler {
	return &HealthHandler{pings: pings}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checks := gin.H{}
	ready := true

	for name, ping := range h.pings {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		err := ping(pingCtx)
		cancel()

		if err != nil {
			checks[name] = "down"
			ready = false
			continue
		}

		checks[name] = "up"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
