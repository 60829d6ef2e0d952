// internal/service/appointment/appointment.go
package appointment

import (
	"context"
	"database/sql"

	domain "dossier-service/internal/domain/appointment"
	dossierdomain "dossier-service/internal/domain/dossier"
	"dossier-service/internal/domain/identity"
	xerrors "dossier-service/internal/pkg/errors"
	"dossier-service/internal/policy"
	"dossier-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// Repo is the slice of the appointment repository the service needs.
type Repo interface {
	CreateWithCascade(ctx context.Context, a *domain.Appointment) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByDossier(ctx context.Context, dossierID int64) ([]domain.Appointment, error)
	List(ctx context.Context, scope postgres.DossierScope) ([]domain.Appointment, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// DossierReader resolves the dossier an appointment belongs to.
type DossierReader interface {
	FindByID(ctx context.Context, id int64) (*dossierdomain.Dossier, error)
}

// CounterLedger receives the honored/missed bucket shifts.
type CounterLedger interface {
	ApplyHonoredDelta(ctx context.Context, agentID int64, honored bool) error
}

type Service struct {
	repo     Repo
	dossiers DossierReader
	counters CounterLedger
	logger   *zap.Logger
}

func NewService(repo Repo, dossiers DossierReader, counters CounterLedger, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		dossiers: dossiers,
		counters: counters,
		logger:   logger,
	}
}

// Create schedules an appointment against a dossier. A dossier still in
// prospect is advanced to rdv_en_cours in the same transaction, with
// appointment_at stamped from the appointment's scheduled time.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req *domain.CreateAppointmentRequest) (*domain.Appointment, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceAppointment, policy.OpCreate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	d, err := s.dossiers.FindByID(ctx, req.DossierID)
	if err != nil {
		return nil, err
	}
	if !policy.VisibleDossier(actor, d) {
		return nil, xerrors.ErrNotFound
	}

	a := &domain.Appointment{
		DossierID:   req.DossierID,
		ScheduledAt: req.ScheduledAt,
		Notes:       sql.NullString{String: req.Notes, Valid: req.Notes != ""},
		Location:    sql.NullString{String: req.Location, Valid: req.Location != ""},
	}

	cascaded, err := s.repo.CreateWithCascade(ctx, a)
	if err != nil {
		s.logger.Error("failed to create appointment", zap.Int64("dossier_id", req.DossierID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.Int64("appointment_id", a.ID),
		zap.Int64("dossier_id", a.DossierID),
		zap.Bool("dossier_advanced", cascaded),
		zap.Int64("actor_id", actor.ID),
	)

	return a, nil
}

// Get retrieves an appointment, applying the owning dossier's visibility.
func (s *Service) Get(ctx context.Context, actor identity.Identity, id int64) (*domain.Appointment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDossierVisible(ctx, actor, a.DossierID); err != nil {
		return nil, err
	}
	return a, nil
}

// List retrieves the appointments of every dossier visible to the actor.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]domain.Appointment, error) {
	switch actor.Role {
	case identity.RoleClient:
		return s.repo.List(ctx, postgres.DossierScope{ClientRef: &actor.ID})
	case identity.RoleAgentPhone:
		return s.repo.List(ctx, postgres.DossierScope{AgentPhoneRef: &actor.ID, ExcludeArchived: true})
	case identity.RoleAgentVideo:
		return s.repo.List(ctx, postgres.DossierScope{AgentVideoRef: &actor.ID, ExcludeArchived: true})
	case identity.RoleSupervisor, identity.RoleManager:
		return s.repo.List(ctx, postgres.DossierScope{})
	}
	return nil, xerrors.ErrForbidden
}

// ListByDossier retrieves one dossier's appointments.
func (s *Service) ListByDossier(ctx context.Context, actor identity.Identity, dossierID int64) ([]domain.Appointment, error) {
	if err := s.checkDossierVisible(ctx, actor, dossierID); err != nil {
		return nil, err
	}
	return s.repo.ListByDossier(ctx, dossierID)
}

// Update patches an appointment. Changing honored relative to its stored
// value shifts the assigned phone agent's honored/missed counters; writing
// the same value again changes nothing, which guards against double
// counting on redundant writes.
func (s *Service) Update(ctx context.Context, actor identity.Identity, id int64, req *domain.UpdateAppointmentRequest) (*domain.Appointment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := s.dossiers.FindByID(ctx, a.DossierID)
	if err != nil {
		return nil, err
	}
	if !policy.VisibleDossier(actor, d) {
		return nil, xerrors.ErrNotFound
	}
	if !policy.Evaluate(actor.Role, policy.ResourceAppointment, policy.OpUpdate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.ScheduledAt != nil {
		fields["scheduled_at"] = *req.ScheduledAt
	}
	if req.Honored != nil {
		fields["honored"] = *req.Honored
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if len(fields) == 0 {
		return nil, xerrors.ErrInvalidInput
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	if req.Honored != nil && *req.Honored != a.Honored {
		if d.AgentPhoneRef.Valid {
			// A lost increment here leaves the two records momentarily out
			// of step; that is tolerated, the appointment write stands.
			if err := s.counters.ApplyHonoredDelta(ctx, d.AgentPhoneRef.Int64, *req.Honored); err != nil {
				s.logger.Warn("failed to apply honored delta",
					zap.Int64("appointment_id", id),
					zap.Int64("agent_id", d.AgentPhoneRef.Int64),
					zap.Error(err),
				)
			}
		} else {
			s.logger.Debug("honored toggled on dossier without phone agent", zap.Int64("appointment_id", id))
		}
	}

	return s.repo.FindByID(ctx, id)
}

// Delete removes an appointment. Supervisory roles only; counter effects
// already applied are not reversed.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkDossierVisible(ctx, actor, a.DossierID); err != nil {
		return err
	}
	if !policy.Evaluate(actor.Role, policy.ResourceAppointment, policy.OpDelete).Allowed {
		return xerrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("appointment deleted", zap.Int64("appointment_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func (s *Service) checkDossierVisible(ctx context.Context, actor identity.Identity, dossierID int64) error {
	d, err := s.dossiers.FindByID(ctx, dossierID)
	if err != nil {
		return err
	}
	if !policy.VisibleDossier(actor, d) {
		return xerrors.ErrNotFound
	}
	return nil
}
