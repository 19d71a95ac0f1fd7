package in

import (
	"context"

	"worktime/internal/modules/capture/dto"
)

type Usecase interface {
	Open(ctx context.Context, target string) (dto.SnapshotOutput, error)
	Capture(ctx context.Context) (dto.SnapshotOutput, error)
	Retake(ctx context.Context) (dto.SnapshotOutput, error)
	Accept(ctx context.Context) (dto.AcceptOutput, error)
	SwitchDevice(ctx context.Context) (dto.SnapshotOutput, error)
	ToggleTorch(ctx context.Context) (dto.SnapshotOutput, error)
	Close(ctx context.Context) (dto.SnapshotOutput, error)
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	Preview(ctx context.Context) (dto.FrameOutput, error)
	Photo(ctx context.Context, target string) (dto.PhotoOutput, error)
	ListDevices(ctx context.Context) ([]dto.DeviceInfo, error)
}
