// internal/repository/postgres/snapshot_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"dossier-service/internal/domain/stats"
	xerrors "dossier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const snapshotColumns = `id, period_kind, period_start, period_end,
	       calls_made, calls_answered, calls_converted,
	       appointments_honored, appointments_missed,
	       cases_validated, cases_signed, revenue, created_at, updated_at`

type SnapshotRepository struct {
	db PgxPool
}

func NewSnapshotRepository(db PgxPool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert writes a generated snapshot, replacing any prior rollup of the same
// (period_kind, period_start) so re-running generate never duplicates.
func (r *SnapshotRepository) Upsert(ctx context.Context, s *stats.Snapshot) error {
	query := `
		INSERT INTO statistic_snapshots (
			period_kind, period_start, period_end,
			calls_made, calls_answered, calls_converted,
			appointments_honored, appointments_missed,
			cases_validated, cases_signed, revenue
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (period_kind, period_start) DO UPDATE
		SET period_end = EXCLUDED.period_end,
		    calls_made = EXCLUDED.calls_made,
		    calls_answered = EXCLUDED.calls_answered,
		    calls_converted = EXCLUDED.calls_converted,
		    appointments_honored = EXCLUDED.appointments_honored,
		    appointments_missed = EXCLUDED.appointments_missed,
		    cases_validated = EXCLUDED.cases_validated,
		    cases_signed = EXCLUDED.cases_signed,
		    revenue = EXCLUDED.revenue,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.PeriodKind, s.PeriodStart, s.PeriodEnd,
		s.CallsMade, s.CallsAnswered, s.CallsConverted,
		s.AppointmentsHonored, s.AppointmentsMissed,
		s.CasesValidated, s.CasesSigned, s.Revenue,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// Create inserts a manually-authored snapshot. A period collision surfaces
// as a conflict instead of silently overwriting generated data.
func (r *SnapshotRepository) Create(ctx context.Context, s *stats.Snapshot) error {
	query := `
		INSERT INTO statistic_snapshots (
			period_kind, period_start, period_end,
			calls_made, calls_answered, calls_converted,
			appointments_honored, appointments_missed,
			cases_validated, cases_signed, revenue
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.PeriodKind, s.PeriodStart, s.PeriodEnd,
		s.CallsMade, s.CallsAnswered, s.CallsConverted,
		s.AppointmentsHonored, s.AppointmentsMissed,
		s.CasesValidated, s.CasesSigned, s.Revenue,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

// FindByID retrieves a snapshot by ID
func (r *SnapshotRepository) FindByID(ctx context.Context, id int64) (*stats.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM statistic_snapshots WHERE id = $1`, snapshotColumns)

	var s stats.Snapshot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.PeriodKind, &s.PeriodStart, &s.PeriodEnd,
		&s.CallsMade, &s.CallsAnswered, &s.CallsConverted,
		&s.AppointmentsHonored, &s.AppointmentsMissed,
		&s.CasesValidated, &s.CasesSigned, &s.Revenue, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}

	return &s, nil
}

// ListByKind retrieves snapshots of one granularity, newest period first.
func (r *SnapshotRepository) ListByKind(ctx context.Context, kind stats.PeriodKind) ([]stats.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM statistic_snapshots WHERE period_kind = $1 ORDER BY period_start DESC
	`, snapshotColumns)

	rows, err := r.db.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// ListRange retrieves snapshots whose period starts inside [start, end),
// newest period first.
func (r *SnapshotRepository) ListRange(ctx context.Context, start, end time.Time) ([]stats.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM statistic_snapshots
		WHERE period_start >= $1 AND period_start < $2
		ORDER BY period_start DESC
	`, snapshotColumns)

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// UpdateFields applies an administrative patch to a snapshot.
func (r *SnapshotRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return xerrors.ErrInvalidInput
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]interface{}, 0, len(keys)+2)
	argPos := 1
	for _, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, argPos))
		args = append(args, fields[k])
		argPos++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now())
	argPos++
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE statistic_snapshots SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a snapshot
func (r *SnapshotRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM statistic_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func scanSnapshots(rows pgx.Rows) ([]stats.Snapshot, error) {
	snapshots := []stats.Snapshot{}
	for rows.Next() {
		var s stats.Snapshot
		err := rows.Scan(
			&s.ID, &s.PeriodKind, &s.PeriodStart, &s.PeriodEnd,
			&s.CallsMade, &s.CallsAnswered, &s.CallsConverted,
			&s.AppointmentsHonored, &s.AppointmentsMissed,
			&s.CasesValidated, &s.CasesSigned, &s.Revenue, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
