package in

import (
	"context"

	"worktime/internal/modules/driver/dto"
)

type Usecase interface {
	Info(ctx context.Context) (dto.DriverInfo, error)
	Doctor(ctx context.Context) (dto.DoctorResult, error)
	SampleLocation(ctx context.Context, input dto.SampleInput) (dto.LocationOutput, error)
	ListVideoInputs(ctx context.Context) ([]dto.VideoInputOutput, error)
	OpenStream(ctx context.Context, input dto.OpenStreamInput) (dto.StreamOutput, error)
	ReadFrame(ctx context.Context, streamID string) (dto.FrameOutput, error)
	ApplyTorch(ctx context.Context, streamID string, on bool) error
	StopStream(ctx context.Context, streamID string) error
	Shutdown(ctx context.Context) error
}
