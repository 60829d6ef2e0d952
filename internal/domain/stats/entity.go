// internal/domain/stats/entity.go
package stats

import (
	"fmt"
	"time"
)

// PeriodKind is the granularity of a statistic snapshot.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
)

// ParsePeriodKind validates a raw period value.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return PeriodKind(s), nil
	}
	return "", fmt.Errorf("unknown period kind %q", s)
}

// AgentCounters is the per-agent running operational ledger. Counters are
// mutated by atomic storage-level increments, never recomputed wholesale
// except through an explicit reset.
type AgentCounters struct {
	AgentID int64 `json:"agent_id" db:"agent_id"`

	CallsMade      int64 `json:"calls_made" db:"calls_made"`
	CallsAnswered  int64 `json:"calls_answered" db:"calls_answered"`
	CallsConverted int64 `json:"calls_converted" db:"calls_converted"`

	AppointmentsHonored int64 `json:"appointments_honored" db:"appointments_honored"`
	AppointmentsMissed  int64 `json:"appointments_missed" db:"appointments_missed"`

	CasesValidated int64 `json:"cases_validated" db:"cases_validated"`
	CasesSigned    int64 `json:"cases_signed" db:"cases_signed"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CounterTotals is the sum of AgentCounters across all agents.
type CounterTotals struct {
	CallsMade           int64 `json:"calls_made"`
	CallsAnswered       int64 `json:"calls_answered"`
	CallsConverted      int64 `json:"calls_converted"`
	AppointmentsHonored int64 `json:"appointments_honored"`
	AppointmentsMissed  int64 `json:"appointments_missed"`
	CasesValidated      int64 `json:"cases_validated"`
	CasesSigned         int64 `json:"cases_signed"`
}

// Snapshot is a denormalized periodic rollup of counters and revenue.
// Immutable once generated, except through the manual admin operations.
type Snapshot struct {
	ID int64 `json:"id" db:"id"`

	PeriodKind  PeriodKind `json:"period_kind" db:"period_kind"`
	PeriodStart time.Time  `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time  `json:"period_end" db:"period_end"`

	CallsMade           int64 `json:"calls_made" db:"calls_made"`
	CallsAnswered       int64 `json:"calls_answered" db:"calls_answered"`
	CallsConverted      int64 `json:"calls_converted" db:"calls_converted"`
	AppointmentsHonored int64 `json:"appointments_honored" db:"appointments_honored"`
	AppointmentsMissed  int64 `json:"appointments_missed" db:"appointments_missed"`
	CasesValidated      int64 `json:"cases_validated" db:"cases_validated"`
	CasesSigned         int64 `json:"cases_signed" db:"cases_signed"`

	Revenue float64 `json:"revenue" db:"revenue"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
