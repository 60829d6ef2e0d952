// internal/domain/appointment/entity.go
package appointment

import (
	"database/sql"
	"time"
)

type Appointment struct {
	ID        int64 `json:"id" db:"id"`
	DossierID int64 `json:"dossier_id" db:"dossier_id"`

	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`

	// Honored stays false until the client actually showed up. Toggling it
	// is the only appointment change with a side effect (agent counters).
	Honored bool `json:"honored" db:"honored"`

	Notes    sql.NullString `json:"notes,omitempty" db:"notes"`
	Location sql.NullString `json:"location,omitempty" db:"location"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
