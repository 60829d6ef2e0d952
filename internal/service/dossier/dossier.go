// internal/service/dossier/dossier.go
package dossier

import (
	"context"
	"database/sql"
	"time"

	domain "dossier-service/internal/domain/dossier"
	"dossier-service/internal/domain/identity"
	xerrors "dossier-service/internal/pkg/errors"
	"dossier-service/internal/policy"
	"dossier-service/internal/repository/postgres"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repo is the slice of the dossier repository the service needs.
type Repo interface {
	Create(ctx context.Context, d *domain.Dossier) error
	FindByID(ctx context.Context, id int64) (*domain.Dossier, error)
	List(ctx context.Context, scope postgres.DossierScope) ([]domain.Dossier, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, now time.Time) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	AttachOffer(ctx context.Context, id, offerID int64) error
	DetachOffer(ctx context.Context, id, offerID int64) error
}

// CounterLedger is the slice of the agent counter ledger touched by status
// transitions.
type CounterLedger interface {
	IncrementValidated(ctx context.Context, agentID int64) error
	IncrementSigned(ctx context.Context, agentID int64) error
}

type Service struct {
	repo     Repo
	counters CounterLedger
	logger   *zap.Logger
}

func NewService(repo Repo, counters CounterLedger, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		counters: counters,
		logger:   logger,
	}
}

// Create opens a new dossier. The initial status is always prospect. An
// agent creating a dossier becomes its matching assigned agent unless the
// request names somebody else.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req *domain.CreateDossierRequest) (*domain.Dossier, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpCreate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	if req.Amount != nil && !policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpUpdate).CanWrite("amount") {
		return nil, xerrors.ErrForbidden
	}

	d := &domain.Dossier{
		ClientRef:     nullInt64(req.ClientRef),
		AgentPhoneRef: nullInt64(req.AgentPhoneRef),
		AgentVideoRef: nullInt64(req.AgentVideoRef),
		Status:        domain.StatusProspect,
		Notes:         sql.NullString{String: req.Notes, Valid: req.Notes != ""},
		Amount:        nullFloat64(req.Amount),
		// Empty, not nil: a nil array binds as SQL NULL and the column
		// rejects it.
		OfferRefs: pq.Int64Array{},
	}

	if actor.Role == identity.RoleAgentPhone && !d.AgentPhoneRef.Valid {
		d.AgentPhoneRef = sql.NullInt64{Int64: actor.ID, Valid: true}
	}
	if actor.Role == identity.RoleAgentVideo && !d.AgentVideoRef.Valid {
		d.AgentVideoRef = sql.NullInt64{Int64: actor.ID, Valid: true}
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("failed to create dossier", zap.Error(err))
		return nil, err
	}

	s.logger.Info("dossier created",
		zap.Int64("dossier_id", d.ID),
		zap.Int64("actor_id", actor.ID),
		zap.String("role", string(actor.Role)),
	)

	return d, nil
}

// Get retrieves a dossier. A dossier outside the actor's visibility is
// reported as missing so inaccessible records cannot be probed.
func (s *Service) Get(ctx context.Context, actor identity.Identity, id int64) (*domain.Dossier, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.VisibleDossier(actor, d) {
		return nil, xerrors.ErrNotFound
	}
	return d, nil
}

// List retrieves the dossiers visible to the actor, newest-created-first.
func (s *Service) List(ctx context.Context, actor identity.Identity, filters *domain.ListFilters) ([]domain.Dossier, error) {
	scope, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}

	if filters != nil && filters.Status != "" {
		status, err := domain.ParseStatus(filters.Status)
		if err != nil {
			return nil, xerrors.ErrInvalidInput
		}
		scope.Status = &status
	}

	return s.repo.List(ctx, scope)
}

// SetStatus transitions the dossier and stamps the matching date field.
// Entering valide or signe also bumps the assigned phone agent's ledger.
func (s *Service) SetStatus(ctx context.Context, actor identity.Identity, id int64, raw string) (*domain.Dossier, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}

	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.VisibleDossier(actor, d) {
		return nil, xerrors.ErrNotFound
	}
	if !policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpUpdate).CanWrite("status") {
		return nil, xerrors.ErrForbidden
	}

	if err := s.repo.SetStatus(ctx, id, status, time.Now()); err != nil {
		return nil, err
	}

	// Ledger effects ride behind the status write; a failed increment is
	// logged and left to reconciliation rather than failing the transition.
	if d.AgentPhoneRef.Valid && status != d.Status {
		switch status {
		case domain.StatusValide:
			if err := s.counters.IncrementValidated(ctx, d.AgentPhoneRef.Int64); err != nil {
				s.logger.Warn("failed to count validated case", zap.Int64("agent_id", d.AgentPhoneRef.Int64), zap.Error(err))
			}
		case domain.StatusSigne:
			if err := s.counters.IncrementSigned(ctx, d.AgentPhoneRef.Int64); err != nil {
				s.logger.Warn("failed to count signed case", zap.Int64("agent_id", d.AgentPhoneRef.Int64), zap.Error(err))
			}
		}
	}

	s.logger.Info("dossier status changed",
		zap.Int64("dossier_id", id),
		zap.String("from", string(d.Status)),
		zap.String("to", string(status)),
		zap.Int64("actor_id", actor.ID),
	)

	return s.repo.FindByID(ctx, id)
}

// Update applies a patch filtered through the actor's writable-field set.
// A patch touching a denied field is rejected before any mutation.
func (s *Service) Update(ctx context.Context, actor identity.Identity, id int64, req *domain.UpdateDossierRequest) (*domain.Dossier, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.VisibleDossier(actor, d) {
		return nil, xerrors.ErrNotFound
	}

	cap := policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpUpdate)
	if !cap.Allowed {
		return nil, xerrors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.ClientRef != nil {
		fields["client_ref"] = *req.ClientRef
	}
	if req.AgentPhoneRef != nil {
		fields["agent_phone_ref"] = *req.AgentPhoneRef
	}
	if req.AgentVideoRef != nil {
		fields["agent_video_ref"] = *req.AgentVideoRef
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Amount != nil {
		fields["amount"] = *req.Amount
	}

	if len(fields) == 0 {
		return nil, xerrors.ErrInvalidInput
	}
	for field := range fields {
		if !cap.CanWrite(field) {
			return nil, xerrors.ErrForbidden
		}
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		s.logger.Error("failed to update dossier", zap.Int64("dossier_id", id), zap.Error(err))
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// Delete removes a dossier. Supervisory roles only.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.VisibleDossier(actor, d) {
		return xerrors.ErrNotFound
	}
	if !policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpDelete).Allowed {
		return xerrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("dossier deleted", zap.Int64("dossier_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

// AttachOffer links an offer to the dossier.
func (s *Service) AttachOffer(ctx context.Context, actor identity.Identity, id, offerID int64) error {
	if err := s.authorizeOfferChange(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.AttachOffer(ctx, id, offerID)
}

// DetachOffer unlinks an offer from the dossier.
func (s *Service) DetachOffer(ctx context.Context, actor identity.Identity, id, offerID int64) error {
	if err := s.authorizeOfferChange(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.DetachOffer(ctx, id, offerID)
}

func (s *Service) authorizeOfferChange(ctx context.Context, actor identity.Identity, id int64) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.VisibleDossier(actor, d) {
		return xerrors.ErrNotFound
	}
	if !policy.Evaluate(actor.Role, policy.ResourceDossier, policy.OpUpdate).CanWrite("offer_refs") {
		return xerrors.ErrForbidden
	}
	return nil
}

// scopeFor translates the actor's visibility rules into a listing scope.
func scopeFor(actor identity.Identity) (postgres.DossierScope, error) {
	switch actor.Role {
	case identity.RoleClient:
		return postgres.DossierScope{ClientRef: &actor.ID}, nil
	case identity.RoleAgentPhone:
		return postgres.DossierScope{AgentPhoneRef: &actor.ID, ExcludeArchived: true}, nil
	case identity.RoleAgentVideo:
		return postgres.DossierScope{AgentVideoRef: &actor.ID, ExcludeArchived: true}, nil
	case identity.RoleSupervisor, identity.RoleManager:
		return postgres.DossierScope{}, nil
	}
	return postgres.DossierScope{}, xerrors.ErrForbidden
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
