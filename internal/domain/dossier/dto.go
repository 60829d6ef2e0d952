// internal/domain/dossier/dto.go
package dossier

type CreateDossierRequest struct {
	ClientRef     *int64  `json:"client_ref"`
	AgentPhoneRef *int64  `json:"agent_phone_ref"`
	AgentVideoRef *int64  `json:"agent_video_ref"`
	Notes         string  `json:"notes"`
	Amount        *float64 `json:"amount"`
}

type UpdateDossierRequest struct {
	ClientRef     *int64   `json:"client_ref"`
	AgentPhoneRef *int64   `json:"agent_phone_ref"`
	AgentVideoRef *int64   `json:"agent_video_ref"`
	Notes         *string  `json:"notes"`
	Amount        *float64 `json:"amount" binding:"omitempty,min=0"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListFilters struct {
	Status string `form:"status"`
}
