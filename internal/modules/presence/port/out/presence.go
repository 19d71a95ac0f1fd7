package out

import (
	"context"
	"time"

	"worktime/internal/modules/presence/domain"
)

type SampleOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

func DefaultSampleOptions() SampleOptions {
	return SampleOptions{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 0}
}

// LocationSampler takes one reading. It returns apperrors.ErrUnsupported when the
// device has no location capability at all.
type LocationSampler interface {
	Sample(ctx context.Context, opts SampleOptions) (domain.GeoFix, error)
}

type AddressLookup interface {
	Lookup(ctx context.Context, at domain.Coordinate) (domain.Place, error)
}
