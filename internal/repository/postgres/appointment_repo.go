// internal/repository/postgres/appointment_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"dossier-service/internal/domain/appointment"
	"dossier-service/internal/domain/dossier"
	xerrors "dossier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const appointmentColumns = `id, dossier_id, scheduled_at, honored, notes, location, created_at, updated_at`

type AppointmentRepository struct {
	db PgxPool
}

func NewAppointmentRepository(db PgxPool) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// CreateWithCascade inserts the appointment and, when the dossier is still a
// prospect, advances it to rdv_en_cours stamping appointment_at with the
// appointment's scheduled time. Both writes land in one transaction; the
// returned flag reports whether the cascade fired.
func (r *AppointmentRepository) CreateWithCascade(ctx context.Context, a *appointment.Appointment) (cascaded bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (dossier_id, scheduled_at, honored, notes, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.DossierID, a.ScheduledAt, a.Honored, a.Notes, a.Location,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create appointment: %w", err)
	}

	// The status guard lives in the UPDATE itself so a concurrent transition
	// cannot double-apply the cascade.
	result, err := tx.Exec(ctx, `
		UPDATE dossiers
		SET status = $1, appointment_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`, dossier.StatusRdvEnCours, a.ScheduledAt, time.Now(), a.DossierID, dossier.StatusProspect)
	if err != nil {
		return false, fmt.Errorf("failed to cascade dossier status: %w", err)
	}
	cascaded = result.RowsAffected() > 0

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return cascaded, nil
}

// FindByID retrieves an appointment by ID
func (r *AppointmentRepository) FindByID(ctx context.Context, id int64) (*appointment.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	var a appointment.Appointment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.DossierID, &a.ScheduledAt, &a.Honored, &a.Notes, &a.Location,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &a, nil
}

// ListByDossier retrieves a dossier's appointments, newest-created-first.
func (r *AppointmentRepository) ListByDossier(ctx context.Context, dossierID int64) ([]appointment.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments WHERE dossier_id = $1 ORDER BY created_at DESC
	`, appointmentColumns)

	rows, err := r.db.Query(ctx, query, dossierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// List retrieves appointments whose dossier falls inside the scope,
// newest-created-first.
func (r *AppointmentRepository) List(ctx context.Context, scope DossierScope) ([]appointment.Appointment, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if scope.ClientRef != nil {
		conditions = append(conditions, fmt.Sprintf("d.client_ref = $%d", argPos))
		args = append(args, *scope.ClientRef)
		argPos++
	}
	if scope.AgentPhoneRef != nil {
		conditions = append(conditions, fmt.Sprintf("d.agent_phone_ref = $%d", argPos))
		args = append(args, *scope.AgentPhoneRef)
		argPos++
	}
	if scope.AgentVideoRef != nil {
		conditions = append(conditions, fmt.Sprintf("d.agent_video_ref = $%d", argPos))
		args = append(args, *scope.AgentVideoRef)
		argPos++
	}
	if scope.ExcludeArchived {
		conditions = append(conditions, fmt.Sprintf("d.status <> $%d", argPos))
		args = append(args, dossier.StatusArchive)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.dossier_id, a.scheduled_at, a.honored, a.notes, a.location, a.created_at, a.updated_at
		FROM appointments a
		JOIN dossiers d ON d.id = a.dossier_id
		WHERE %s
		ORDER BY a.created_at DESC
	`, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateFields applies a patch to an appointment. Keys are trusted.
func (r *AppointmentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
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

	query := fmt.Sprintf(`UPDATE appointments SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes an appointment
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func scanAppointments(rows pgx.Rows) ([]appointment.Appointment, error) {
	appointments := []appointment.Appointment{}
	for rows.Next() {
		var a appointment.Appointment
		err := rows.Scan(
			&a.ID, &a.DossierID, &a.ScheduledAt, &a.Honored, &a.Notes, &a.Location,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}
