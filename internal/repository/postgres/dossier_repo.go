// internal/repository/postgres/dossier_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"dossier-service/internal/domain/dossier"
	xerrors "dossier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const dossierColumns = `id, client_ref, agent_phone_ref, agent_video_ref, status,
	       appointment_at, validated_at, signed_at, archived_at,
	       notes, amount, offer_refs, created_at, updated_at`

type DossierRepository struct {
	db PgxPool
}

func NewDossierRepository(db PgxPool) *DossierRepository {
	return &DossierRepository{db: db}
}

// DossierScope restricts a listing to what the acting user may see. Zero
// value means no restriction (supervisory roles).
type DossierScope struct {
	ClientRef       *int64
	AgentPhoneRef   *int64
	AgentVideoRef   *int64
	ExcludeArchived bool
	Status          *dossier.Status
}

// Create inserts a new dossier. Status is always prospect at creation.
func (r *DossierRepository) Create(ctx context.Context, d *dossier.Dossier) error {
	query := `
		INSERT INTO dossiers (client_ref, agent_phone_ref, agent_video_ref, status, notes, amount, offer_refs)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		d.ClientRef, d.AgentPhoneRef, d.AgentVideoRef, d.Status, d.Notes, d.Amount, d.OfferRefs,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create dossier: %w", err)
	}

	return nil
}

// FindByID retrieves a dossier by ID
func (r *DossierRepository) FindByID(ctx context.Context, id int64) (*dossier.Dossier, error) {
	query := fmt.Sprintf(`SELECT %s FROM dossiers WHERE id = $1`, dossierColumns)

	var d dossier.Dossier
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.ClientRef, &d.AgentPhoneRef, &d.AgentVideoRef, &d.Status,
		&d.AppointmentAt, &d.ValidatedAt, &d.SignedAt, &d.ArchivedAt,
		&d.Notes, &d.Amount, &d.OfferRefs, &d.CreatedAt, &d.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dossier: %w", err)
	}

	return &d, nil
}

// List retrieves dossiers inside the given scope, newest-created-first.
func (r *DossierRepository) List(ctx context.Context, scope DossierScope) ([]dossier.Dossier, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if scope.ClientRef != nil {
		conditions = append(conditions, fmt.Sprintf("client_ref = $%d", argPos))
		args = append(args, *scope.ClientRef)
		argPos++
	}
	if scope.AgentPhoneRef != nil {
		conditions = append(conditions, fmt.Sprintf("agent_phone_ref = $%d", argPos))
		args = append(args, *scope.AgentPhoneRef)
		argPos++
	}
	if scope.AgentVideoRef != nil {
		conditions = append(conditions, fmt.Sprintf("agent_video_ref = $%d", argPos))
		args = append(args, *scope.AgentVideoRef)
		argPos++
	}
	if scope.ExcludeArchived {
		conditions = append(conditions, fmt.Sprintf("status <> $%d", argPos))
		args = append(args, dossier.StatusArchive)
		argPos++
	}
	if scope.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *scope.Status)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM dossiers
		WHERE %s
		ORDER BY created_at DESC
	`, dossierColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dossiers: %w", err)
	}
	defer rows.Close()

	dossiers := []dossier.Dossier{}
	for rows.Next() {
		var d dossier.Dossier
		err := rows.Scan(
			&d.ID, &d.ClientRef, &d.AgentPhoneRef, &d.AgentVideoRef, &d.Status,
			&d.AppointmentAt, &d.ValidatedAt, &d.SignedAt, &d.ArchivedAt,
			&d.Notes, &d.Amount, &d.OfferRefs, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dossier: %w", err)
		}
		dossiers = append(dossiers, d)
	}

	return dossiers, rows.Err()
}

// SetStatus moves a dossier into a new status and stamps the matching date
// field. rdv_en_cours keeps an already-set appointment_at; the other
// transitions stamp their field with now. Unrelated stamps are untouched.
func (r *DossierRepository) SetStatus(ctx context.Context, id int64, status dossier.Status, now time.Time) error {
	var query string
	switch status {
	case dossier.StatusProspect:
		query = `UPDATE dossiers SET status = $1, updated_at = $2 WHERE id = $3`
	case dossier.StatusRdvEnCours:
		query = `UPDATE dossiers SET status = $1, updated_at = $2, appointment_at = COALESCE(appointment_at, $2) WHERE id = $3`
	case dossier.StatusValide:
		query = `UPDATE dossiers SET status = $1, updated_at = $2, validated_at = $2 WHERE id = $3`
	case dossier.StatusSigne:
		query = `UPDATE dossiers SET status = $1, updated_at = $2, signed_at = $2 WHERE id = $3`
	case dossier.StatusArchive:
		query = `UPDATE dossiers SET status = $1, updated_at = $2, archived_at = $2 WHERE id = $3`
	default:
		return xerrors.ErrInvalidInput
	}

	result, err := r.db.Exec(ctx, query, status, now, id)
	if err != nil {
		return fmt.Errorf("failed to set dossier status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateFields applies a field-filtered patch. Keys must already have gone
// through the access policy's writable-field set. Last write wins.
func (r *DossierRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
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

	query := fmt.Sprintf(`UPDATE dossiers SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update dossier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a dossier
func (r *DossierRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dossiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dossier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// AttachOffer adds an offer ref to the dossier's set, ignoring duplicates.
func (r *DossierRepository) AttachOffer(ctx context.Context, id, offerID int64) error {
	query := `
		UPDATE dossiers
		SET offer_refs = array_append(offer_refs, $1), updated_at = $2
		WHERE id = $3 AND NOT ($1 = ANY(offer_refs))
	`
	result, err := r.db.Exec(ctx, query, offerID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to attach offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either the dossier is gone or the offer was already attached.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// DetachOffer removes an offer ref from the dossier's set.
func (r *DossierRepository) DetachOffer(ctx context.Context, id, offerID int64) error {
	query := `
		UPDATE dossiers
		SET offer_refs = array_remove(offer_refs, $1), updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.Exec(ctx, query, offerID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to detach offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SumSignedAmounts totals the amount of every signed dossier.
func (r *DossierRepository) SumSignedAmounts(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM dossiers WHERE status = $1`

	var total float64
	if err := r.db.QueryRow(ctx, query, dossier.StatusSigne).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum signed amounts: %w", err)
	}

	return total, nil
}
