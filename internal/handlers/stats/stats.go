// internal/handlers/stats/stats.go
package stats

import (
	"net/http"
	"strconv"
	"time"

	"dossier-service/internal/domain/stats"
	"dossier-service/internal/middleware"
	"dossier-service/internal/pkg/response"
	service "dossier-service/internal/service/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *service.Service
}

func NewStatsHandler(statsService *service.Service) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GenerateSnapshot computes and stores the snapshot for the current period
func (h *StatsHandler) GenerateSnapshot(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var req stats.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	var asOf time.Time
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	result, err := h.statsService.Generate(c.Request.Context(), actor, req.Period, asOf)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshot generated", result)
}

// ListSnapshots returns snapshots of one period kind, most recent first
func (h *StatsHandler) ListSnapshots(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	result, err := h.statsService.Query(c.Request.Context(), actor, c.Query("period"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshots retrieved", result)
}

// ListSnapshotsRange returns snapshots whose period starts inside [start, end)
func (h *StatsHandler) ListSnapshotsRange(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid start time", err)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid end time", err)
		return
	}

	result, err := h.statsService.QueryRange(c.Request.Context(), actor, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshots retrieved", result)
}

// GetSnapshot retrieves a snapshot by ID
func (h *StatsHandler) GetSnapshot(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid snapshot ID", err)
		return
	}

	result, err := h.statsService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshot retrieved", result)
}

// CreateSnapshot stores a manually supplied snapshot
func (h *StatsHandler) CreateSnapshot(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var req stats.CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.statsService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "snapshot created successfully", result)
}

// UpdateSnapshot applies a field-filtered patch to a snapshot
func (h *StatsHandler) UpdateSnapshot(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid snapshot ID", err)
		return
	}

	var req stats.UpdateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.statsService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshot updated successfully", result)
}

// DeleteSnapshot removes a snapshot
func (h *StatsHandler) DeleteSnapshot(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid snapshot ID", err)
		return
	}

	if err := h.statsService.Delete(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "snapshot deleted successfully", nil)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
