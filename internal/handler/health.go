package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger verifies a backing connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	mongo Pinger
	redis Pinger
}

// NewHealthHandler creates the health handler. Either pinger may be nil
// when the backing store is not configured.
func NewHealthHandler(mongo, redis Pinger) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis}
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready reports readiness: the process is up and its stores answer.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.mongo != nil {
		if err := h.mongo.Ping(c.Request.Context()); err != nil {
			checks["mongo"] = err.Error()
			ready = false
		} else {
			checks["mongo"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
