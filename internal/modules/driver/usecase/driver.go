package usecase

import (
	"context"

	"worktime/internal/modules/driver/dto"
	driverin "worktime/internal/modules/driver/port/in"
	"worktime/internal/modules/driver/service"
)

type Interactor struct {
	svc *service.DriverService
}

func NewInteractor(svc *service.DriverService) driverin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Info(ctx context.Context) (dto.DriverInfo, error) {
	return i.svc.Info(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) SampleLocation(ctx context.Context, input dto.SampleInput) (dto.LocationOutput, error) {
	return i.svc.SampleLocation(ctx, input)
}

func (i *Interactor) ListVideoInputs(ctx context.Context) ([]dto.VideoInputOutput, error) {
	return i.svc.ListVideoInputs(ctx)
}

func (i *Interactor) OpenStream(ctx context.Context, input dto.OpenStreamInput) (dto.StreamOutput, error) {
	return i.svc.OpenStream(ctx, input)
}

func (i *Interactor) ReadFrame(ctx context.Context, streamID string) (dto.FrameOutput, error) {
	return i.svc.ReadFrame(ctx, streamID)
}

func (i *Interactor) ApplyTorch(ctx context.Context, streamID string, on bool) error {
	return i.svc.ApplyTorch(ctx, streamID, on)
}

func (i *Interactor) StopStream(ctx context.Context, streamID string) error {
	return i.svc.StopStream(ctx, streamID)
}

func (i *Interactor) Shutdown(ctx context.Context) error {
	return i.svc.Shutdown(ctx)
}
