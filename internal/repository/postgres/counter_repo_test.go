package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestCounterRepositoryRecordCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		answered  bool
		converted bool
		wantArgs  []any
	}{
		{
			name:     "unanswered call bumps calls_made only",
			wantArgs: []any{int64(7), 0, 0},
		},
		{
			name:     "answered call bumps calls_answered",
			answered: true,
			wantArgs: []any{int64(7), 1, 0},
		},
		{
			name:      "converted call bumps all three",
			answered:  true,
			converted: true,
			wantArgs:  []any{int64(7), 1, 1},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create pgx mock: %v", err)
			}
			defer mock.Close()

			mock.ExpectExec(`INSERT INTO agent_counters \(agent_id, calls_made, calls_answered, calls_converted\)`).
				WithArgs(tc.wantArgs...).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			repo := NewCounterRepository(mock)
			if err := repo.RecordCall(context.Background(), 7, tc.answered, tc.converted); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestCounterRepositoryApplyHonoredDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		honored bool
		pattern string
	}{
		{
			name:    "honored moves missed to honored",
			honored: true,
			pattern: `INSERT INTO agent_counters \(agent_id, appointments_honored\)`,
		},
		{
			name:    "not honored moves honored to missed",
			honored: false,
			pattern: `INSERT INTO agent_counters \(agent_id, appointments_missed\)`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create pgx mock: %v", err)
			}
			defer mock.Close()

			mock.ExpectExec(tc.pattern).
				WithArgs(int64(3)).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			repo := NewCounterRepository(mock)
			if err := repo.ApplyHonoredDelta(context.Background(), 3, tc.honored); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestCounterRepositoryGetByAgentMissingRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT agent_id, calls_made`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"agent_id", "calls_made", "calls_answered", "calls_converted",
			"appointments_honored", "appointments_missed",
			"cases_validated", "cases_signed", "updated_at",
		}))

	repo := NewCounterRepository(mock)
	got, err := repo.GetByAgent(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AgentID != 42 {
		t.Fatalf("expected agent_id 42, got %d", got.AgentID)
	}
	if got.CallsMade != 0 || got.CasesSigned != 0 {
		t.Fatalf("expected zero-valued counters, got %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCounterRepositoryGetByAgent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT agent_id, calls_made`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{
			"agent_id", "calls_made", "calls_answered", "calls_converted",
			"appointments_honored", "appointments_missed",
			"cases_validated", "cases_signed", "updated_at",
		}).AddRow(int64(5), int64(10), int64(6), int64(2), int64(4), int64(1), int64(3), int64(2), now))

	repo := NewCounterRepository(mock)
	got, err := repo.GetByAgent(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CallsMade != 10 || got.AppointmentsHonored != 4 || got.CasesSigned != 2 {
		t.Fatalf("unexpected counters: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCounterRepositoryReset(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE agent_counters`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewCounterRepository(mock)
	if err := repo.Reset(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
