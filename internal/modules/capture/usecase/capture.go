package usecase

import (
	"context"
	"fmt"

	"worktime/internal/modules/capture/domain"
	"worktime/internal/modules/capture/dto"
	capturein "worktime/internal/modules/capture/port/in"
	"worktime/internal/modules/capture/service"
	apperrors "worktime/internal/platform/errors"
)

type Interactor struct {
	svc *service.SessionManager
}

func NewInteractor(svc *service.SessionManager) capturein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, target string) (dto.SnapshotOutput, error) {
	parsed, err := domain.ParseTarget(target)
	if err != nil {
		return dto.SnapshotOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	snap, err := i.svc.Open(ctx, parsed)
	return toSnapshot(snap), err
}

func (i *Interactor) Capture(ctx context.Context) (dto.SnapshotOutput, error) {
	snap, err := i.svc.Capture(ctx)
	return toSnapshot(snap), err
}

func (i *Interactor) Retake(ctx context.Context) (dto.SnapshotOutput, error) {
	snap, err := i.svc.Retake(ctx)
	return toSnapshot(snap), err
}

func (i *Interactor) Accept(ctx context.Context) (dto.AcceptOutput, error) {
	photo, snap, err := i.svc.Accept(ctx)
	if err != nil {
		return dto.AcceptOutput{Snapshot: toSnapshot(snap)}, err
	}
	return dto.AcceptOutput{Photo: toPhoto(photo), Snapshot: toSnapshot(snap)}, nil
}

func (i *Interactor) SwitchDevice(ctx context.Context) (dto.SnapshotOutput, error) {
	snap, err := i.svc.SwitchDevice(ctx)
	return toSnapshot(snap), err
}

func (i *Interactor) ToggleTorch(ctx context.Context) (dto.SnapshotOutput, error) {
	snap, err := i.svc.ToggleTorch(ctx)
	return toSnapshot(snap), err
}

func (i *Interactor) Close(ctx context.Context) (dto.SnapshotOutput, error) {
	return toSnapshot(i.svc.Close(ctx)), nil
}

func (i *Interactor) Snapshot(_ context.Context) (dto.SnapshotOutput, error) {
	return toSnapshot(i.svc.Snapshot()), nil
}

func (i *Interactor) Preview(ctx context.Context) (dto.FrameOutput, error) {
	img, frozen, err := i.svc.Preview(ctx)
	if err != nil {
		return dto.FrameOutput{}, err
	}
	return dto.FrameOutput{Image: img, Frozen: frozen}, nil
}

func (i *Interactor) Photo(_ context.Context, target string) (dto.PhotoOutput, error) {
	parsed, err := domain.ParseTarget(target)
	if err != nil {
		return dto.PhotoOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	photo, ok := i.svc.Photo(parsed)
	if !ok {
		return dto.PhotoOutput{}, apperrors.ErrNoPhoto
	}
	return toPhoto(photo), nil
}

func (i *Interactor) ListDevices(ctx context.Context) ([]dto.DeviceInfo, error) {
	devices, err := i.svc.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return toDevices(devices), nil
}

func toSnapshot(s domain.Snapshot) dto.SnapshotOutput {
	return dto.SnapshotOutput{
		State:           string(s.State),
		Active:          s.Active,
		Target:          string(s.Target),
		Devices:         toDevices(s.Devices),
		DeviceIndex:     s.DeviceIndex,
		DeviceID:        s.DeviceID,
		FacingMode:      string(s.FacingMode),
		TorchSupported:  s.TorchSupported,
		TorchEnabled:    s.TorchEnabled,
		HasPendingFrame: s.HasPendingFrame,
		Status:          s.Status,
	}
}

func toDevices(devices []domain.DeviceDescriptor) []dto.DeviceInfo {
	out := make([]dto.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, dto.DeviceInfo{DeviceID: d.DeviceID, Label: d.Label})
	}
	return out
}

func toPhoto(p domain.Photo) dto.PhotoOutput {
	return dto.PhotoOutput{
		Target:     string(p.Target),
		DataURL:    p.DataURL(),
		JPEG:       p.JPEG,
		Width:      p.Width,
		Height:     p.Height,
		DeviceID:   p.DeviceID,
		CapturedAt: p.CapturedAt,
	}
}
