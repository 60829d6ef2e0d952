// internal/handlers/counters/counters.go
package counters

import (
	"net/http"
	"strconv"

	"dossier-service/internal/domain/stats"
	"dossier-service/internal/middleware"
	"dossier-service/internal/pkg/response"
	service "dossier-service/internal/service/counters"

	"github.com/gin-gonic/gin"
)

type CounterHandler struct {
	counterService *service.Service
}

func NewCounterHandler(counterService *service.Service) *CounterHandler {
	return &CounterHandler{
		counterService: counterService,
	}
}

// GetMyCounters returns the acting agent's own counters
func (h *CounterHandler) GetMyCounters(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	result, err := h.counterService.Get(c.Request.Context(), actor, actor.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "counters retrieved", result)
}

// GetAgentCounters returns counters for a given agent
func (h *CounterHandler) GetAgentCounters(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	agentID, err := strconv.ParseInt(c.Param("agent_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid agent ID", err)
		return
	}

	result, err := h.counterService.Get(c.Request.Context(), actor, agentID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "counters retrieved", result)
}

// RecordCall bumps the acting agent's call counters
func (h *CounterHandler) RecordCall(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var req stats.RecordCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.counterService.RecordCall(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "call recorded", result)
}

// ResetAgentCounters zeroes an agent's counters
func (h *CounterHandler) ResetAgentCounters(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	agentID, err := strconv.ParseInt(c.Param("agent_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid agent ID", err)
		return
	}

	if err := h.counterService.Reset(c.Request.Context(), actor, agentID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "counters reset successfully", nil)
}
