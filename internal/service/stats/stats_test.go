package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"dossier-service/internal/domain/identity"
	domain "dossier-service/internal/domain/stats"
	xerrors "dossier-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type fakeSnapshots struct {
	snapshots map[int64]*domain.Snapshot
	nextID    int64

	upserted *domain.Snapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snapshots: map[int64]*domain.Snapshot{}, nextID: 1}
}

func (f *fakeSnapshots) Upsert(_ context.Context, s *domain.Snapshot) error {
	// Emulate the (period_kind, period_start) conflict target.
	for _, existing := range f.snapshots {
		if existing.PeriodKind == s.PeriodKind && existing.PeriodStart.Equal(s.PeriodStart) {
			s.ID = existing.ID
			f.snapshots[existing.ID] = s
			f.upserted = s
			return nil
		}
	}
	s.ID = f.nextID
	f.nextID++
	f.snapshots[s.ID] = s
	f.upserted = s
	return nil
}

func (f *fakeSnapshots) Create(_ context.Context, s *domain.Snapshot) error {
	for _, existing := range f.snapshots {
		if existing.PeriodKind == s.PeriodKind && existing.PeriodStart.Equal(s.PeriodStart) {
			return xerrors.ErrConflict
		}
	}
	s.ID = f.nextID
	f.nextID++
	f.snapshots[s.ID] = s
	return nil
}

func (f *fakeSnapshots) FindByID(_ context.Context, id int64) (*domain.Snapshot, error) {
	s, ok := f.snapshots[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func (f *fakeSnapshots) ListByKind(_ context.Context, kind domain.PeriodKind) ([]domain.Snapshot, error) {
	out := []domain.Snapshot{}
	for _, s := range f.snapshots {
		if s.PeriodKind == kind {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSnapshots) ListRange(_ context.Context, start, end time.Time) ([]domain.Snapshot, error) {
	out := []domain.Snapshot{}
	for _, s := range f.snapshots {
		if !s.PeriodStart.Before(start) && s.PeriodStart.Before(end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSnapshots) UpdateFields(_ context.Context, id int64, fields map[string]interface{}) error {
	s, ok := f.snapshots[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	if v, ok := fields["revenue"]; ok {
		s.Revenue = v.(float64)
	}
	return nil
}

func (f *fakeSnapshots) Delete(_ context.Context, id int64) error {
	if _, ok := f.snapshots[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.snapshots, id)
	return nil
}

type fakeSummer struct {
	totals domain.CounterTotals
	err    error
}

func (f *fakeSummer) SumAll(_ context.Context) (domain.CounterTotals, error) {
	return f.totals, f.err
}

type fakeRevenue struct {
	total float64
}

func (f *fakeRevenue) SumSignedAmounts(_ context.Context) (float64, error) {
	return f.total, nil
}

func manager() identity.Identity {
	return identity.Identity{ID: 1, Role: identity.RoleManager}
}

func TestPeriodBounds(t *testing.T) {
	// Wednesday, March 11th 2026, mid-afternoon.
	asOf := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		kind      domain.PeriodKind
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "day runs midnight to midnight",
			kind:      domain.PeriodDay,
			wantStart: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "week starts on Monday",
			kind:      domain.PeriodWeek,
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "month runs first to first",
			kind:      domain.PeriodMonth,
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PeriodBounds(tc.kind, asOf)
			if !start.Equal(tc.wantStart) {
				t.Fatalf("expected start %v, got %v", tc.wantStart, start)
			}
			if !end.Equal(tc.wantEnd) {
				t.Fatalf("expected end %v, got %v", tc.wantEnd, end)
			}
		})
	}
}

func TestPeriodBoundsSundayBelongsToPriorWeek(t *testing.T) {
	// Sunday, March 15th 2026.
	asOf := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	start, _ := PeriodBounds(domain.PeriodWeek, asOf)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected week start %v, got %v", want, start)
	}
}

func TestGenerateRollsUpLedger(t *testing.T) {
	snapshots := newFakeSnapshots()
	summer := &fakeSummer{totals: domain.CounterTotals{
		CallsMade:      40,
		CallsAnswered:  25,
		CallsConverted: 9,
		CasesSigned:    3,
	}}
	svc := NewService(snapshots, summer, &fakeRevenue{total: 12500}, zap.NewNop())

	asOf := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)
	got, err := svc.Generate(context.Background(), manager(), "day", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CallsMade != 40 || got.CasesSigned != 3 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Revenue != 12500 {
		t.Fatalf("expected revenue 12500, got %v", got.Revenue)
	}
	if !got.PeriodStart.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start %v", got.PeriodStart)
	}
}

func TestGenerateReplacesSamePeriod(t *testing.T) {
	snapshots := newFakeSnapshots()
	summer := &fakeSummer{totals: domain.CounterTotals{CallsMade: 10}}
	svc := NewService(snapshots, summer, &fakeRevenue{}, zap.NewNop())

	asOf := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	first, err := svc.Generate(context.Background(), manager(), "day", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summer.totals.CallsMade = 22
	second, err := svc.Generate(context.Background(), manager(), "day", asOf.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same-period regeneration to replace, got ids %d and %d", first.ID, second.ID)
	}
	if len(snapshots.snapshots) != 1 {
		t.Fatalf("expected a single snapshot row, got %d", len(snapshots.snapshots))
	}
	if snapshots.snapshots[first.ID].CallsMade != 22 {
		t.Fatalf("expected refreshed totals, got %d", snapshots.snapshots[first.ID].CallsMade)
	}
}

func TestGenerateForbiddenForAgents(t *testing.T) {
	svc := NewService(newFakeSnapshots(), &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	_, err := svc.Generate(context.Background(), identity.Identity{ID: 10, Role: identity.RoleAgentPhone}, "day", time.Time{})
	if !errors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGenerateRejectsUnknownPeriod(t *testing.T) {
	svc := NewService(newFakeSnapshots(), &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	_, err := svc.Generate(context.Background(), manager(), "quarter", time.Time{})
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQueryRangeValidatesOrder(t *testing.T) {
	svc := NewService(newFakeSnapshots(), &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	now := time.Now()
	_, err := svc.QueryRange(context.Background(), manager(), now, now)
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty range, got %v", err)
	}
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	snapshots := newFakeSnapshots()
	svc := NewService(snapshots, &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	req := &domain.CreateSnapshotRequest{
		Period:      "day",
		PeriodStart: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	if _, err := svc.Create(context.Background(), manager(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), manager(), req); !errors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateRejectsInvertedPeriod(t *testing.T) {
	svc := NewService(newFakeSnapshots(), &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	_, err := svc.Create(context.Background(), manager(), &domain.CreateSnapshotRequest{
		Period:      "day",
		PeriodStart: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	snapshots := newFakeSnapshots()
	svc := NewService(snapshots, &fakeSummer{}, &fakeRevenue{}, zap.NewNop())

	_, err := svc.Update(context.Background(), manager(), 1, &domain.UpdateSnapshotRequest{})
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSnapshotAccessSupervisoryOnly(t *testing.T) {
	svc := NewService(newFakeSnapshots(), &fakeSummer{}, &fakeRevenue{}, zap.NewNop())
	agent := identity.Identity{ID: 10, Role: identity.RoleAgentVideo}

	if _, err := svc.Query(context.Background(), agent, "day"); !errors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on query, got %v", err)
	}
	if err := svc.Delete(context.Background(), agent, 1); !errors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
}
