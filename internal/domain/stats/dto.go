// internal/domain/stats/dto.go
package stats

import "time"

type GenerateRequest struct {
	Period string     `json:"period" binding:"required"`
	AsOf   *time.Time `json:"as_of"`
}

type CreateSnapshotRequest struct {
	Period      string    `json:"period" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`

	CallsMade           int64 `json:"calls_made"`
	CallsAnswered       int64 `json:"calls_answered"`
	CallsConverted      int64 `json:"calls_converted"`
	AppointmentsHonored int64 `json:"appointments_honored"`
	AppointmentsMissed  int64 `json:"appointments_missed"`
	CasesValidated      int64 `json:"cases_validated"`
	CasesSigned         int64 `json:"cases_signed"`

	Revenue float64 `json:"revenue"`
}

type UpdateSnapshotRequest struct {
	CallsMade           *int64 `json:"calls_made"`
	CallsAnswered       *int64 `json:"calls_answered"`
	CallsConverted      *int64 `json:"calls_converted"`
	AppointmentsHonored *int64 `json:"appointments_honored"`
	AppointmentsMissed  *int64 `json:"appointments_missed"`
	CasesValidated      *int64 `json:"cases_validated"`
	CasesSigned         *int64 `json:"cases_signed"`

	Revenue *float64 `json:"revenue"`
}

type RecordCallRequest struct {
	Answered  bool `json:"answered"`
	Converted bool `json:"converted"`
}
