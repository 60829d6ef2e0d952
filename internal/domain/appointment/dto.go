// internal/domain/appointment/dto.go
package appointment

import "time"

type CreateAppointmentRequest struct {
	DossierID   int64     `json:"dossier_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes"`
	Location    string    `json:"location"`
}

type UpdateAppointmentRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Honored     *bool      `json:"honored"`
	Notes       *string    `json:"notes"`
	Location    *string    `json:"location"`
}
