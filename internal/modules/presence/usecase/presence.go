package usecase

import (
	"context"

	"worktime/internal/modules/presence/domain"
	"worktime/internal/modules/presence/dto"
	presencein "worktime/internal/modules/presence/port/in"
	"worktime/internal/modules/presence/service"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
)

type Interactor struct {
	svc   *service.PresenceService
	clock clock.Clock
}

func NewInteractor(svc *service.PresenceService, clock clock.Clock) presencein.Usecase {
	return &Interactor{svc: svc, clock: clock}
}

func (i *Interactor) Refresh(ctx context.Context) (dto.VerdictOutput, error) {
	return toOutput(i.svc.Refresh(ctx)), nil
}

func (i *Interactor) ResolveAddress(ctx context.Context, generation uint64) (dto.VerdictOutput, bool, error) {
	if generation == 0 {
		return dto.VerdictOutput{}, false, apperrors.ErrInvalidInput
	}
	verdict, applied := i.svc.ResolveAddress(ctx, generation)
	return toOutput(verdict), applied, nil
}

func (i *Interactor) Latest(_ context.Context) (dto.VerdictOutput, error) {
	verdict, ok := i.svc.Latest()
	if !ok {
		return dto.VerdictOutput{Kind: string(domain.VerdictPending)}, nil
	}
	return toOutput(verdict), nil
}

func (i *Interactor) LatestFix(_ context.Context) (dto.FixOutput, error) {
	fix, address, ok := i.svc.LatestFix()
	if !ok {
		return dto.FixOutput{}, apperrors.ErrNoFix
	}
	age := i.clock.Now().Sub(fix.Timestamp)
	if age < 0 {
		age = 0
	}
	return dto.FixOutput{
		Lat:            fix.Lat,
		Lng:            fix.Lng,
		AccuracyMeters: domain.RoundAccuracy(fix.Accuracy),
		Timestamp:      fix.Timestamp,
		Age:            age,
		Address:        address,
	}, nil
}

func (i *Interactor) Gates(_ context.Context, input dto.GateInput) (dto.GateOutput, error) {
	verdict, _ := i.svc.Latest()
	flags := domain.AttendanceFlags{HasCheckedIn: input.HasCheckedIn, HasCheckedOut: input.HasCheckedOut}
	return dto.GateOutput{
		CheckIn:     domain.CheckInEnabled(verdict, flags),
		CheckOut:    domain.CheckOutEnabled(verdict, flags),
		Allowed:     verdict.Allowed,
		Explanation: verdict.Explanation,
	}, nil
}

func toOutput(v domain.Verdict) dto.VerdictOutput {
	out := dto.VerdictOutput{
		Generation:         v.Generation,
		Kind:               string(v.Kind),
		Allowed:            v.Allowed,
		WithinRadius:       v.WithinRadius,
		AccuracyAcceptable: v.AccuracyAcceptable,
		FreshEnough:        v.FreshEnough,
		Reason:             string(v.Reason),
		Explanation:        v.Explanation,
		HasFix:             v.HasFix(),
		AccuracyMeters:     v.AccuracyMeters,
		DistanceMeters:     v.DistanceMeters,
		Age:                v.Age,
		Address:            v.Address,
		AddressResolved:    v.AddressResolved,
		EvaluatedAt:        v.EvaluatedAt,
	}
	if v.HasFix() {
		out.Lat = v.Fix.Lat
		out.Lng = v.Fix.Lng
		out.CoordinateText = v.Fix.Coordinate.String()
		out.FixTimestamp = v.Fix.Timestamp
	}
	return out
}
