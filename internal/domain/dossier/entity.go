// internal/domain/dossier/entity.go
package dossier

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Status is the dossier lifecycle state. The lifecycle is linear
// (prospect -> rdv_en_cours -> valide -> signe) with archive reachable
// from any non-terminal state as an absorbing state.
type Status string

const (
	StatusProspect   Status = "prospect"
	StatusRdvEnCours Status = "rdv_en_cours"
	StatusValide     Status = "valide"
	StatusSigne      Status = "signe"
	StatusArchive    Status = "archive"
)

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProspect, StatusRdvEnCours, StatusValide, StatusSigne, StatusArchive:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown dossier status %q", s)
}

type Dossier struct {
	ID int64 `json:"id" db:"id"`

	// Parties
	ClientRef     sql.NullInt64 `json:"client_ref,omitempty" db:"client_ref"`
	AgentPhoneRef sql.NullInt64 `json:"agent_phone_ref,omitempty" db:"agent_phone_ref"`
	AgentVideoRef sql.NullInt64 `json:"agent_video_ref,omitempty" db:"agent_video_ref"`

	Status Status `json:"status" db:"status"`

	// Lifecycle stamps, each set when the matching transition occurs.
	AppointmentAt sql.NullTime `json:"appointment_at,omitempty" db:"appointment_at"`
	ValidatedAt   sql.NullTime `json:"validated_at,omitempty" db:"validated_at"`
	SignedAt      sql.NullTime `json:"signed_at,omitempty" db:"signed_at"`
	ArchivedAt    sql.NullTime `json:"archived_at,omitempty" db:"archived_at"`

	Notes     sql.NullString  `json:"notes,omitempty" db:"notes"`
	Amount    sql.NullFloat64 `json:"amount,omitempty" db:"amount"`
	OfferRefs pq.Int64Array   `json:"offer_refs,omitempty" db:"offer_refs"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
