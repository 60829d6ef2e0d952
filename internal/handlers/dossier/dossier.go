// internal/handlers/dossier/dossier.go
package dossier

import (
	"net/http"
	"strconv"

	"dossier-service/internal/domain/dossier"
	"dossier-service/internal/middleware"
	"dossier-service/internal/pkg/response"
	service "dossier-service/internal/service/dossier"

	"github.com/gin-gonic/gin"
)

type DossierHandler struct {
	dossierService *service.Service
}

func NewDossierHandler(dossierService *service.Service) *DossierHandler {
	return &DossierHandler{
		dossierService: dossierService,
	}
}

// CreateDossier opens a new dossier
func (h *DossierHandler) CreateDossier(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var req dossier.CreateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.dossierService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "dossier created successfully", result)
}

// GetDossier retrieves a dossier by ID
func (h *DossierHandler) GetDossier(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}

	result, err := h.dossierService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dossier retrieved", result)
}

// ListDossiers retrieves the dossiers visible to the acting user
func (h *DossierHandler) ListDossiers(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var filters dossier.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.dossierService.List(c.Request.Context(), actor, &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dossiers retrieved", result)
}

// UpdateDossier applies a field-filtered patch
func (h *DossierHandler) UpdateDossier(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}

	var req dossier.UpdateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.dossierService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dossier updated successfully", result)
}

// SetStatus transitions the dossier lifecycle
func (h *DossierHandler) SetStatus(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}

	var req dossier.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.dossierService.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dossier status updated", result)
}

// DeleteDossier removes a dossier
func (h *DossierHandler) DeleteDossier(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}

	if err := h.dossierService.Delete(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dossier deleted successfully", nil)
}

// AttachOffer links an offer to the dossier
func (h *DossierHandler) AttachOffer(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}
	offerID, err := parseID(c, "offer_id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid offer ID", err)
		return
	}

	if err := h.dossierService.AttachOffer(c.Request.Context(), actor, id, offerID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "offer attached successfully", nil)
}

// DetachOffer unlinks an offer from the dossier
func (h *DossierHandler) DetachOffer(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}
	offerID, err := parseID(c, "offer_id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid offer ID", err)
		return
	}

	if err := h.dossierService.DetachOffer(c.Request.Context(), actor, id, offerID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "offer detached successfully", nil)
}

func parseID(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}
