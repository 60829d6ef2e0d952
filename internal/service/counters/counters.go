// internal/service/counters/counters.go
package counters

import (
	"context"

	"dossier-service/internal/domain/identity"
	domain "dossier-service/internal/domain/stats"
	xerrors "dossier-service/internal/pkg/errors"
	"dossier-service/internal/policy"

	"go.uber.org/zap"
)

// Ledger is the slice of the counter repository exposed over HTTP.
type Ledger interface {
	GetByAgent(ctx context.Context, agentID int64) (*domain.AgentCounters, error)
	RecordCall(ctx context.Context, agentID int64, answered, converted bool) error
	Reset(ctx context.Context, agentID int64) error
}

type Service struct {
	ledger Ledger
	logger *zap.Logger
}

func NewService(ledger Ledger, logger *zap.Logger) *Service {
	return &Service{ledger: ledger, logger: logger}
}

// Get returns an agent's counters. Agents read their own, supervisory
// roles read anybody's.
func (s *Service) Get(ctx context.Context, actor identity.Identity, agentID int64) (*domain.AgentCounters, error) {
	if !policy.CanReadCounters(actor, agentID) {
		return nil, xerrors.ErrForbidden
	}
	return s.ledger.GetByAgent(ctx, agentID)
}

// RecordCall lands a call outcome on the acting agent's own ledger.
func (s *Service) RecordCall(ctx context.Context, actor identity.Identity, req *domain.RecordCallRequest) (*domain.AgentCounters, error) {
	if !actor.Role.IsAgent() || !policy.Evaluate(actor.Role, policy.ResourceCounters, policy.OpUpdate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	if err := s.ledger.RecordCall(ctx, actor.ID, req.Answered, req.Converted); err != nil {
		s.logger.Error("failed to record call", zap.Int64("agent_id", actor.ID), zap.Error(err))
		return nil, err
	}

	return s.ledger.GetByAgent(ctx, actor.ID)
}

// Reset zeroes an agent's counters. Supervisory roles only.
func (s *Service) Reset(ctx context.Context, actor identity.Identity, agentID int64) error {
	if !policy.Evaluate(actor.Role, policy.ResourceCounters, policy.OpReset).Allowed {
		return xerrors.ErrForbidden
	}

	if err := s.ledger.Reset(ctx, agentID); err != nil {
		return err
	}

	s.logger.Info("agent counters reset", zap.Int64("agent_id", agentID), zap.Int64("actor_id", actor.ID))
	return nil
}
