package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dossier-service/internal/domain/appointment"
	"dossier-service/internal/domain/dossier"
	xerrors "dossier-service/internal/pkg/errors"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestAppointmentRepositoryCreateWithCascade(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		setupMock    func(pgxmock.PgxPoolIface)
		wantCascaded bool
		wantErr      bool
	}{
		{
			name: "prospect dossier is advanced",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO appointments`).
					WithArgs(int64(1), scheduled, false, sql.NullString{}, sql.NullString{}).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
						AddRow(int64(11), time.Now(), time.Now()))
				mock.ExpectExec(`UPDATE dossiers`).
					WithArgs(dossier.StatusRdvEnCours, scheduled, pgxmock.AnyArg(), int64(1), dossier.StatusProspect).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			wantCascaded: true,
		},
		{
			name: "already advanced dossier is untouched",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO appointments`).
					WithArgs(int64(1), scheduled, false, sql.NullString{}, sql.NullString{}).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
						AddRow(int64(12), time.Now(), time.Now()))
				mock.ExpectExec(`UPDATE dossiers`).
					WithArgs(dossier.StatusRdvEnCours, scheduled, pgxmock.AnyArg(), int64(1), dossier.StatusProspect).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectCommit()
			},
			wantCascaded: false,
		},
		{
			name: "insert failure rolls back",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO appointments`).
					WithArgs(int64(1), scheduled, false, sql.NullString{}, sql.NullString{}).
					WillReturnError(errors.New("insert failed"))
				mock.ExpectRollback()
			},
			wantErr: true,
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

			tc.setupMock(mock)

			repo := NewAppointmentRepository(mock)
			a := &appointment.Appointment{DossierID: 1, ScheduledAt: scheduled}
			cascaded, err := repo.CreateWithCascade(context.Background(), a)

			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cascaded != tc.wantCascaded {
					t.Fatalf("expected cascaded=%v, got %v", tc.wantCascaded, cascaded)
				}
				if a.ID == 0 {
					t.Fatalf("expected appointment ID to be set")
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestAppointmentRepositoryFindByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, dossier_id`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "dossier_id", "scheduled_at", "honored", "notes", "location", "created_at", "updated_at",
		}))

	repo := NewAppointmentRepository(mock)
	_, err = repo.FindByID(context.Background(), 99)
	if !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepositoryDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "existing appointment", affected: 1},
		{name: "missing appointment", affected: 0, wantErr: xerrors.ErrNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create pgx mock: %v", err)
			}
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM appointments`).
				WithArgs(int64(4)).
				WillReturnResult(pgxmock.NewResult("DELETE", tc.affected))

			repo := NewAppointmentRepository(mock)
			err = repo.Delete(context.Background(), 4)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
