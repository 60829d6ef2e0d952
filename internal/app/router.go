// internal/app/router.go
package app

import (
	appointmentHandler "dossier-service/internal/handlers/appointment"
	counterHandler "dossier-service/internal/handlers/counters"
	dossierHandler "dossier-service/internal/handlers/dossier"
	statsHandler "dossier-service/internal/handlers/stats"
	"dossier-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	DossierHandler     *dossierHandler.DossierHandler
	AppointmentHandler *appointmentHandler.AppointmentHandler
	CounterHandler     *counterHandler.CounterHandler
	StatsHandler       *statsHandler.StatsHandler
	AuthMiddleware     *middleware.AuthMiddleware
	RateLimit          gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Dossiers ====================
	dossiers := api.Group("/dossiers")
	dossiers.Use(h.AuthMiddleware.Auth(), h.RateLimit)
	{
		dossiers.POST("", h.DossierHandler.CreateDossier)
		dossiers.GET("", h.DossierHandler.ListDossiers)
		dossiers.GET("/:id", h.DossierHandler.GetDossier)
		dossiers.PUT("/:id", h.DossierHandler.UpdateDossier)
		dossiers.PUT("/:id/status", h.DossierHandler.SetStatus)
		dossiers.DELETE("/:id", h.DossierHandler.DeleteDossier)
		dossiers.POST("/:id/offers/:offer_id", h.DossierHandler.AttachOffer)
		dossiers.DELETE("/:id/offers/:offer_id", h.DossierHandler.DetachOffer)
		dossiers.GET("/:id/appointments", h.AppointmentHandler.ListByDossier)
	}

	// ==================== Appointments ====================
	appointments := api.Group("/appointments")
	appointments.Use(h.AuthMiddleware.Auth(), h.RateLimit)
	{
		appointments.POST("", h.AppointmentHandler.CreateAppointment)
		appointments.GET("", h.AppointmentHandler.ListAppointments)
		appointments.GET("/:id", h.AppointmentHandler.GetAppointment)
		appointments.PUT("/:id", h.AppointmentHandler.UpdateAppointment)
		appointments.DELETE("/:id", h.AppointmentHandler.DeleteAppointment)
	}

	// ==================== Counters ====================
	counters := api.Group("/counters")
	counters.Use(h.AuthMiddleware.Auth(), h.RateLimit)
	{
		counters.GET("/me", h.CounterHandler.GetMyCounters)
		counters.POST("/me/calls", h.CounterHandler.RecordCall)
		counters.GET("/:agent_id", h.CounterHandler.GetAgentCounters)
		counters.POST("/:agent_id/reset", h.CounterHandler.ResetAgentCounters)
	}

	// ==================== Statistics ====================
	stats := api.Group("/stats")
	stats.Use(h.AuthMiddleware.Auth(), h.RateLimit)
	{
		stats.GET("", h.StatsHandler.ListSnapshots)
		stats.GET("/range", h.StatsHandler.ListSnapshotsRange)
		stats.POST("/generate", h.StatsHandler.GenerateSnapshot)
		stats.POST("", h.StatsHandler.CreateSnapshot)
		stats.GET("/:id", h.StatsHandler.GetSnapshot)
		stats.PUT("/:id", h.StatsHandler.UpdateSnapshot)
		stats.DELETE("/:id", h.StatsHandler.DeleteSnapshot)
	}
}
