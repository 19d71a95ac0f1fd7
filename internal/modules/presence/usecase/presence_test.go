package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worktime/internal/modules/presence/domain"
	"worktime/internal/modules/presence/dto"
	presenceout "worktime/internal/modules/presence/port/out"
	"worktime/internal/modules/presence/service"
	"worktime/internal/modules/presence/usecase"
	apperrors "worktime/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type staticSampler struct{ fix domain.GeoFix }

func (s staticSampler) Sample(context.Context, presenceout.SampleOptions) (domain.GeoFix, error) {
	return s.fix, nil
}

type staticLookup struct{ place domain.Place }

func (s staticLookup) Lookup(context.Context, domain.Coordinate) (domain.Place, error) {
	return s.place, nil
}

func TestInteractorRefreshAndLatestFix(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	clk := &fakeClock{values: []time.Time{base, base.Add(30 * time.Second)}}
	fix := domain.GeoFix{Coordinate: domain.DefaultOfficeSite().Center, Accuracy: 7.6, Timestamp: base}
	svc := service.NewPresenceService(clk, domain.DefaultOfficeSite(), staticSampler{fix}, staticLookup{domain.Place{DisplayName: "Kantor Pusat"}}, presenceout.DefaultSampleOptions())
	uc := usecase.NewInteractor(svc, clk)

	if _, err := uc.LatestFix(context.Background()); !errors.Is(err, apperrors.ErrNoFix) {
		t.Fatalf("expected ErrNoFix before refresh, got %v", err)
	}
	pending, err := uc.Latest(context.Background())
	if err != nil || pending.Kind != string(domain.VerdictPending) {
		t.Fatalf("expected pending verdict, got %+v %v", pending, err)
	}

	out, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !out.Allowed || out.CoordinateText != "-6.142184, 106.816450" || out.AccuracyMeters != 8 {
		t.Fatalf("unexpected verdict output %+v", out)
	}

	resolved, applied, err := uc.ResolveAddress(context.Background(), out.Generation)
	if err != nil || !applied || resolved.Address != "Kantor Pusat" {
		t.Fatalf("unexpected resolve result %+v applied=%v err=%v", resolved, applied, err)
	}

	latestFix, err := uc.LatestFix(context.Background())
	if err != nil {
		t.Fatalf("latest fix: %v", err)
	}
	if latestFix.Age != 30*time.Second || latestFix.Address != "Kantor Pusat" || latestFix.AccuracyMeters != 8 {
		t.Fatalf("unexpected latest fix %+v", latestFix)
	}
}

func TestResolveAddressRejectsZeroGeneration(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{time.Now()}}
	svc := service.NewPresenceService(clk, domain.DefaultOfficeSite(), nil, nil, presenceout.DefaultSampleOptions())
	uc := usecase.NewInteractor(svc, clk)
	if _, _, err := uc.ResolveAddress(context.Background(), 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGatesFollowLatestVerdict(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	clk := &fakeClock{values: []time.Time{base}}
	fix := domain.GeoFix{Coordinate: domain.DefaultOfficeSite().Center, Accuracy: 10, Timestamp: base}
	svc := service.NewPresenceService(clk, domain.DefaultOfficeSite(), staticSampler{fix}, staticLookup{}, presenceout.DefaultSampleOptions())
	uc := usecase.NewInteractor(svc, clk)

	before, err := uc.Gates(context.Background(), dto.GateInput{})
	if err != nil {
		t.Fatalf("gates: %v", err)
	}
	if before.CheckIn || before.CheckOut {
		t.Fatalf("no action may be enabled before the first fix: %+v", before)
	}

	if _, err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fresh, _ := uc.Gates(context.Background(), dto.GateInput{})
	if !fresh.CheckIn || fresh.CheckOut {
		t.Fatalf("expected only check-in enabled, got %+v", fresh)
	}
	in, _ := uc.Gates(context.Background(), dto.GateInput{HasCheckedIn: true})
	if in.CheckIn || !in.CheckOut {
		t.Fatalf("expected only check-out enabled, got %+v", in)
	}
	done, _ := uc.Gates(context.Background(), dto.GateInput{HasCheckedIn: true, HasCheckedOut: true})
	if done.CheckIn || done.CheckOut {
		t.Fatalf("expected nothing enabled after check-out, got %+v", done)
	}
}
