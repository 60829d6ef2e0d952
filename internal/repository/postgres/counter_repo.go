// internal/repository/postgres/counter_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dossier-service/internal/domain/stats"

	"github.com/jackc/pgx/v5"
)

// CounterRepository is the Agent Counter Ledger. Every mutation is a single
// atomic UPDATE (upserting the agent's row on first touch) so concurrent
// appointment toggles cannot lose increments.
type CounterRepository struct {
	db PgxPool
}

func NewCounterRepository(db PgxPool) *CounterRepository {
	return &CounterRepository{db: db}
}

// GetByAgent returns the agent's counters, zero-valued when the agent has
// never been counted.
func (r *CounterRepository) GetByAgent(ctx context.Context, agentID int64) (*stats.AgentCounters, error) {
	query := `
		SELECT agent_id, calls_made, calls_answered, calls_converted,
		       appointments_honored, appointments_missed,
		       cases_validated, cases_signed, updated_at
		FROM agent_counters
		WHERE agent_id = $1
	`

	var c stats.AgentCounters
	err := r.db.QueryRow(ctx, query, agentID).Scan(
		&c.AgentID, &c.CallsMade, &c.CallsAnswered, &c.CallsConverted,
		&c.AppointmentsHonored, &c.AppointmentsMissed,
		&c.CasesValidated, &c.CasesSigned, &c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return &stats.AgentCounters{AgentID: agentID, UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get counters: %w", err)
	}

	return &c, nil
}

// RecordCall bumps calls_made and, per the outcome, calls_answered and
// calls_converted.
func (r *CounterRepository) RecordCall(ctx context.Context, agentID int64, answered, converted bool) error {
	answeredInc := 0
	if answered {
		answeredInc = 1
	}
	convertedInc := 0
	if converted {
		convertedInc = 1
	}

	query := `
		INSERT INTO agent_counters (agent_id, calls_made, calls_answered, calls_converted)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (agent_id) DO UPDATE
		SET calls_made = agent_counters.calls_made + 1,
		    calls_answered = agent_counters.calls_answered + $2,
		    calls_converted = agent_counters.calls_converted + $3,
		    updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, agentID, answeredInc, convertedInc); err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}

	return nil
}

// ApplyHonoredDelta shifts one appointment between the honored and missed
// buckets. honored=true moves missed -> honored, honored=false is the exact
// mirror. Decrements floor at zero.
func (r *CounterRepository) ApplyHonoredDelta(ctx context.Context, agentID int64, honored bool) error {
	var query string
	if honored {
		query = `
			INSERT INTO agent_counters (agent_id, appointments_honored)
			VALUES ($1, 1)
			ON CONFLICT (agent_id) DO UPDATE
			SET appointments_honored = agent_counters.appointments_honored + 1,
			    appointments_missed = GREATEST(agent_counters.appointments_missed - 1, 0),
			    updated_at = NOW()
		`
	} else {
		query = `
			INSERT INTO agent_counters (agent_id, appointments_missed)
			VALUES ($1, 1)
			ON CONFLICT (agent_id) DO UPDATE
			SET appointments_missed = agent_counters.appointments_missed + 1,
			    appointments_honored = GREATEST(agent_counters.appointments_honored - 1, 0),
			    updated_at = NOW()
		`
	}

	if _, err := r.db.Exec(ctx, query, agentID); err != nil {
		return fmt.Errorf("failed to apply honored delta: %w", err)
	}

	return nil
}

// IncrementValidated bumps cases_validated for the agent.
func (r *CounterRepository) IncrementValidated(ctx context.Context, agentID int64) error {
	query := `
		INSERT INTO agent_counters (agent_id, cases_validated)
		VALUES ($1, 1)
		ON CONFLICT (agent_id) DO UPDATE
		SET cases_validated = agent_counters.cases_validated + 1, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, agentID); err != nil {
		return fmt.Errorf("failed to increment validated: %w", err)
	}
	return nil
}

// IncrementSigned bumps cases_signed for the agent.
func (r *CounterRepository) IncrementSigned(ctx context.Context, agentID int64) error {
	query := `
		INSERT INTO agent_counters (agent_id, cases_signed)
		VALUES ($1, 1)
		ON CONFLICT (agent_id) DO UPDATE
		SET cases_signed = agent_counters.cases_signed + 1, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, agentID); err != nil {
		return fmt.Errorf("failed to increment signed: %w", err)
	}
	return nil
}

// Reset zeroes every counter for the agent. The only wholesale rewrite the
// ledger allows.
func (r *CounterRepository) Reset(ctx context.Context, agentID int64) error {
	query := `
		UPDATE agent_counters
		SET calls_made = 0, calls_answered = 0, calls_converted = 0,
		    appointments_honored = 0, appointments_missed = 0,
		    cases_validated = 0, cases_signed = 0,
		    updated_at = NOW()
		WHERE agent_id = $1
	`
	if _, err := r.db.Exec(ctx, query, agentID); err != nil {
		return fmt.Errorf("failed to reset counters: %w", err)
	}
	return nil
}

// SumAll totals the counters across all agents.
func (r *CounterRepository) SumAll(ctx context.Context) (stats.CounterTotals, error) {
	query := `
		SELECT COALESCE(SUM(calls_made), 0), COALESCE(SUM(calls_answered), 0),
		       COALESCE(SUM(calls_converted), 0),
		       COALESCE(SUM(appointments_honored), 0), COALESCE(SUM(appointments_missed), 0),
		       COALESCE(SUM(cases_validated), 0), COALESCE(SUM(cases_signed), 0)
		FROM agent_counters
	`

	var t stats.CounterTotals
	err := r.db.QueryRow(ctx, query).Scan(
		&t.CallsMade, &t.CallsAnswered, &t.CallsConverted,
		&t.AppointmentsHonored, &t.AppointmentsMissed,
		&t.CasesValidated, &t.CasesSigned,
	)
	if err != nil {
		return stats.CounterTotals{}, fmt.Errorf("failed to sum counters: %w", err)
	}

	return t, nil
}
