package out

import (
	"context"
	"time"

	driverdto "worktime/internal/modules/driver/dto"
	driverin "worktime/internal/modules/driver/port/in"
	"worktime/internal/modules/presence/domain"
	presenceout "worktime/internal/modules/presence/port/out"
)

// DriverLocationSampler reads fixes from the device driver's location capability.
type DriverLocationSampler struct {
	driver driverin.Usecase
}

func NewDriverLocationSampler(driver driverin.Usecase) presenceout.LocationSampler {
	return &DriverLocationSampler{driver: driver}
}

func (s *DriverLocationSampler) Sample(ctx context.Context, opts presenceout.SampleOptions) (domain.GeoFix, error) {
	reading, err := s.driver.SampleLocation(ctx, driverdto.SampleInput{
		HighAccuracy: opts.HighAccuracy,
		Timeout:      opts.Timeout,
		MaximumAge:   opts.MaximumAge,
	})
	if err != nil {
		return domain.GeoFix{}, err
	}
	timestamp := reading.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return domain.GeoFix{
		Coordinate: domain.Coordinate{Lat: reading.Lat, Lng: reading.Lng},
		Accuracy:   reading.Accuracy,
		Timestamp:  timestamp,
	}, nil
}
