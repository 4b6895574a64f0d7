package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the gateway's liveness
type HealthStatus struct {
	Status string `json:"status" example:"healthy"`
}

// CheckHealth godoc
// @Summary Check gateway health
// @Tags system
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *Handler) CheckHealth(c *gin.Context) {
	sendJSON(c, http.StatusOK, HealthStatus{Status: "healthy"})
}
