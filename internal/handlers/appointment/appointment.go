// internal/handlers/appointment/appointment.go
package appointment

import (
	"net/http"
	"strconv"

	"dossier-service/internal/domain/appointment"
	"dossier-service/internal/middleware"
	"dossier-service/internal/pkg/response"
	service "dossier-service/internal/service/appointment"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointmentService *service.Service
}

func NewAppointmentHandler(appointmentService *service.Service) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

// CreateAppointment schedules an appointment for a dossier
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	var req appointment.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.appointmentService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "appointment created successfully", result)
}

// GetAppointment retrieves an appointment by ID
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid appointment ID", err)
		return
	}

	result, err := h.appointmentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "appointment retrieved", result)
}

// ListAppointments retrieves the appointments visible to the acting user
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	result, err := h.appointmentService.List(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "appointments retrieved", result)
}

// ListByDossier retrieves the appointments attached to one dossier
func (h *AppointmentHandler) ListByDossier(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	dossierID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid dossier ID", err)
		return
	}

	result, err := h.appointmentService.ListByDossier(c.Request.Context(), actor, dossierID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "appointments retrieved", result)
}

// UpdateAppointment applies a field-filtered patch
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid appointment ID", err)
		return
	}

	var req appointment.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.appointmentService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "appointment updated successfully", result)
}

// DeleteAppointment removes an appointment
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	actor := middleware.MustGetIdentity(c)

	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid appointment ID", err)
		return
	}

	if err := h.appointmentService.Delete(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "appointment deleted successfully", nil)
}

func parseID(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}
