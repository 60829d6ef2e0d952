// internal/service/stats/stats.go
package stats

import (
	"context"
	"time"

	"dossier-service/internal/domain/identity"
	domain "dossier-service/internal/domain/stats"
	xerrors "dossier-service/internal/pkg/errors"
	"dossier-service/internal/policy"

	"go.uber.org/zap"
)

// SnapshotRepo is the slice of the snapshot repository the service needs.
type SnapshotRepo interface {
	Upsert(ctx context.Context, s *domain.Snapshot) error
	Create(ctx context.Context, s *domain.Snapshot) error
	FindByID(ctx context.Context, id int64) (*domain.Snapshot, error)
	ListByKind(ctx context.Context, kind domain.PeriodKind) ([]domain.Snapshot, error)
	ListRange(ctx context.Context, start, end time.Time) ([]domain.Snapshot, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// CounterSummer totals the agent counter ledger.
type CounterSummer interface {
	SumAll(ctx context.Context) (domain.CounterTotals, error)
}

// RevenueSource totals the amounts of signed dossiers.
type RevenueSource interface {
	SumSignedAmounts(ctx context.Context) (float64, error)
}

type Service struct {
	snapshots SnapshotRepo
	counters  CounterSummer
	revenue   RevenueSource
	logger    *zap.Logger
}

func NewService(snapshots SnapshotRepo, counters CounterSummer, revenue RevenueSource, logger *zap.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		counters:  counters,
		revenue:   revenue,
		logger:    logger,
	}
}

// PeriodBounds computes the [start, end) window containing asOf. Days run
// midnight to midnight, weeks Monday to Monday, months first to first, all
// in asOf's location.
func PeriodBounds(kind domain.PeriodKind, asOf time.Time) (time.Time, time.Time) {
	loc := asOf.Location()
	midnight := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)

	switch kind {
	case domain.PeriodWeek:
		offset := (int(midnight.Weekday()) + 6) % 7 // Monday = 0
		start := midnight.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case domain.PeriodMonth:
		start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default:
		return midnight, midnight.AddDate(0, 0, 1)
	}
}

// Generate rolls the current ledger totals and signed revenue into the
// snapshot for the period containing asOf, replacing any earlier rollup of
// the same period.
func (s *Service) Generate(ctx context.Context, actor identity.Identity, rawKind string, asOf time.Time) (*domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpCreate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	kind, err := domain.ParsePeriodKind(rawKind)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}

	if asOf.IsZero() {
		asOf = time.Now()
	}
	start, end := PeriodBounds(kind, asOf)

	totals, err := s.counters.SumAll(ctx)
	if err != nil {
		s.logger.Error("failed to sum counters", zap.Error(err))
		return nil, err
	}

	revenue, err := s.revenue.SumSignedAmounts(ctx)
	if err != nil {
		s.logger.Error("failed to sum signed revenue", zap.Error(err))
		return nil, err
	}

	snapshot := &domain.Snapshot{
		PeriodKind:          kind,
		PeriodStart:         start,
		PeriodEnd:           end,
		CallsMade:           totals.CallsMade,
		CallsAnswered:       totals.CallsAnswered,
		CallsConverted:      totals.CallsConverted,
		AppointmentsHonored: totals.AppointmentsHonored,
		AppointmentsMissed:  totals.AppointmentsMissed,
		CasesValidated:      totals.CasesValidated,
		CasesSigned:         totals.CasesSigned,
		Revenue:             revenue,
	}

	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot generated",
		zap.String("period_kind", string(kind)),
		zap.Time("period_start", start),
		zap.Float64("revenue", revenue),
		zap.Int64("actor_id", actor.ID),
	)

	return snapshot, nil
}

// Query lists snapshots of one granularity, newest-first.
func (s *Service) Query(ctx context.Context, actor identity.Identity, rawKind string) ([]domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpRead).Allowed {
		return nil, xerrors.ErrForbidden
	}
	kind, err := domain.ParsePeriodKind(rawKind)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}
	return s.snapshots.ListByKind(ctx, kind)
}

// QueryRange lists snapshots whose period starts inside [start, end),
// newest-first.
func (s *Service) QueryRange(ctx context.Context, actor identity.Identity, start, end time.Time) ([]domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpRead).Allowed {
		return nil, xerrors.ErrForbidden
	}
	if !start.Before(end) {
		return nil, xerrors.ErrInvalidInput
	}
	return s.snapshots.ListRange(ctx, start, end)
}

// Get retrieves one snapshot by id.
func (s *Service) Get(ctx context.Context, actor identity.Identity, id int64) (*domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpRead).Allowed {
		return nil, xerrors.ErrForbidden
	}
	return s.snapshots.FindByID(ctx, id)
}

// Create inserts a manually-authored snapshot. Never triggered by generate.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req *domain.CreateSnapshotRequest) (*domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpCreate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	kind, err := domain.ParsePeriodKind(req.Period)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}
	if !req.PeriodStart.Before(req.PeriodEnd) {
		return nil, xerrors.ErrInvalidInput
	}

	snapshot := &domain.Snapshot{
		PeriodKind:          kind,
		PeriodStart:         req.PeriodStart,
		PeriodEnd:           req.PeriodEnd,
		CallsMade:           req.CallsMade,
		CallsAnswered:       req.CallsAnswered,
		CallsConverted:      req.CallsConverted,
		AppointmentsHonored: req.AppointmentsHonored,
		AppointmentsMissed:  req.AppointmentsMissed,
		CasesValidated:      req.CasesValidated,
		CasesSigned:         req.CasesSigned,
		Revenue:             req.Revenue,
	}

	if err := s.snapshots.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot created manually",
		zap.Int64("snapshot_id", snapshot.ID),
		zap.Int64("actor_id", actor.ID),
	)

	return snapshot, nil
}

// Update applies an administrative edit to a snapshot.
func (s *Service) Update(ctx context.Context, actor identity.Identity, id int64, req *domain.UpdateSnapshotRequest) (*domain.Snapshot, error) {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpUpdate).Allowed {
		return nil, xerrors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.CallsMade != nil {
		fields["calls_made"] = *req.CallsMade
	}
	if req.CallsAnswered != nil {
		fields["calls_answered"] = *req.CallsAnswered
	}
	if req.CallsConverted != nil {
		fields["calls_converted"] = *req.CallsConverted
	}
	if req.AppointmentsHonored != nil {
		fields["appointments_honored"] = *req.AppointmentsHonored
	}
	if req.AppointmentsMissed != nil {
		fields["appointments_missed"] = *req.AppointmentsMissed
	}
	if req.CasesValidated != nil {
		fields["cases_validated"] = *req.CasesValidated
	}
	if req.CasesSigned != nil {
		fields["cases_signed"] = *req.CasesSigned
	}
	if req.Revenue != nil {
		fields["revenue"] = *req.Revenue
	}
	if len(fields) == 0 {
		return nil, xerrors.ErrInvalidInput
	}

	if err := s.snapshots.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	return s.snapshots.FindByID(ctx, id)
}

// Delete removes a snapshot.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	if !policy.Evaluate(actor.Role, policy.ResourceSnapshot, policy.OpDelete).Allowed {
		return xerrors.ErrForbidden
	}
	return s.snapshots.Delete(ctx, id)
}
