package out

import (
	"context"
	"image"

	"worktime/internal/modules/capture/domain"
)

// Constraints selects a camera. A non-empty DeviceID is an exact match and wins over FacingMode.
type Constraints struct {
	FacingMode domain.FacingMode
	DeviceID   string
}

type Camera interface {
	ListVideoInputs(ctx context.Context) ([]domain.DeviceDescriptor, error)
	OpenStream(ctx context.Context, constraints Constraints) (Stream, error)
}

type Stream interface {
	DeviceID() string
	Resolution() domain.Resolution
	SupportsTorch() bool
	ApplyTorch(ctx context.Context, on bool) error
	ReadFrame(ctx context.Context) (image.Image, error)
	Stop(ctx context.Context) error
}

type Shutter interface {
	Play()
}

type PhotoArchive interface {
	Save(ctx context.Context, photo domain.Photo) (string, error)
}
