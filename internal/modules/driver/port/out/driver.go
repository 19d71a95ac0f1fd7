package out

import (
	"context"

	"worktime/internal/modules/driver/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) (domain.Manifest, error)
}

// Host talks to the driver process. Streams live inside that process, so a host keeps
// one connection per manifest until Close.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	SampleLocation(ctx context.Context, manifest domain.Manifest, req domain.LocationRequest) (domain.LocationReading, error)
	ListVideoInputs(ctx context.Context, manifest domain.Manifest) ([]domain.VideoInput, error)
	OpenStream(ctx context.Context, manifest domain.Manifest, req domain.StreamRequest) (domain.StreamInfo, error)
	ReadFrame(ctx context.Context, manifest domain.Manifest, streamID string) ([]byte, error)
	ApplyTorch(ctx context.Context, manifest domain.Manifest, streamID string, on bool) error
	StopStream(ctx context.Context, manifest domain.Manifest, streamID string) error
	Close() error
}
