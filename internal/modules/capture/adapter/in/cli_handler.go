package in

import (
	"context"

	"worktime/internal/modules/capture/dto"
	capturein "worktime/internal/modules/capture/port/in"
)

type CLIHandler struct {
	usecase capturein.Usecase
}

func NewCLIHandler(usecase capturein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Open(ctx context.Context, target string) (dto.SnapshotOutput, error) {
	return h.usecase.Open(ctx, target)
}

func (h CLIHandler) Capture(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Capture(ctx)
}

func (h CLIHandler) Retake(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Retake(ctx)
}

func (h CLIHandler) Accept(ctx context.Context) (dto.AcceptOutput, error) {
	return h.usecase.Accept(ctx)
}

func (h CLIHandler) SwitchDevice(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.SwitchDevice(ctx)
}

func (h CLIHandler) ToggleTorch(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.ToggleTorch(ctx)
}

func (h CLIHandler) Close(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Close(ctx)
}

func (h CLIHandler) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Preview(ctx context.Context) (dto.FrameOutput, error) {
	return h.usecase.Preview(ctx)
}

func (h CLIHandler) Photo(ctx context.Context, target string) (dto.PhotoOutput, error) {
	return h.usecase.Photo(ctx, target)
}

func (h CLIHandler) ListDevices(ctx context.Context) ([]dto.DeviceInfo, error) {
	return h.usecase.ListDevices(ctx)
}

// CaptureOnce opens the camera for target, grabs one frame and accepts it.
func (h CLIHandler) CaptureOnce(ctx context.Context, target string) (dto.AcceptOutput, error) {
	if _, err := h.usecase.Open(ctx, target); err != nil {
		return dto.AcceptOutput{}, err
	}
	if _, err := h.usecase.Capture(ctx); err != nil {
		_, _ = h.usecase.Close(ctx)
		return dto.AcceptOutput{}, err
	}
	out, err := h.usecase.Accept(ctx)
	if err != nil {
		_, _ = h.usecase.Close(ctx)
		return dto.AcceptOutput{}, err
	}
	return out, nil
}
