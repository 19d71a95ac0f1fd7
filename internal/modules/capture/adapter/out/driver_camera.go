package out

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"worktime/internal/modules/capture/domain"
	captureout "worktime/internal/modules/capture/port/out"
	driverdto "worktime/internal/modules/driver/dto"
	driverin "worktime/internal/modules/driver/port/in"
)

// DriverCamera exposes the device driver's camera capability as a Camera.
type DriverCamera struct {
	driver driverin.Usecase
}

func NewDriverCamera(driver driverin.Usecase) captureout.Camera {
	return &DriverCamera{driver: driver}
}

func (c *DriverCamera) ListVideoInputs(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	inputs, err := c.driver.ListVideoInputs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DeviceDescriptor, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, domain.DeviceDescriptor{DeviceID: in.DeviceID, Label: in.Label})
	}
	return out, nil
}

func (c *DriverCamera) OpenStream(ctx context.Context, constraints captureout.Constraints) (captureout.Stream, error) {
	info, err := c.driver.OpenStream(ctx, driverdto.OpenStreamInput{
		FacingMode: string(constraints.FacingMode),
		DeviceID:   constraints.DeviceID,
	})
	if err != nil {
		return nil, err
	}
	return &driverStream{driver: c.driver, info: info}, nil
}

type driverStream struct {
	driver driverin.Usecase
	info   driverdto.StreamOutput
}

func (s *driverStream) DeviceID() string {
	return s.info.DeviceID
}

func (s *driverStream) Resolution() domain.Resolution {
	return domain.Resolution{Width: s.info.Width, Height: s.info.Height}
}

func (s *driverStream) SupportsTorch() bool {
	return s.info.TorchSupported
}

func (s *driverStream) ApplyTorch(ctx context.Context, on bool) error {
	return s.driver.ApplyTorch(ctx, s.info.StreamID, on)
}

func (s *driverStream) ReadFrame(ctx context.Context) (image.Image, error) {
	frame, err := s.driver.ReadFrame(ctx, s.info.StreamID)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(frame.PNG))
	if err != nil {
		return nil, fmt.Errorf("decode frame from %s: %w", s.info.DeviceID, err)
	}
	return img, nil
}

func (s *driverStream) Stop(ctx context.Context) error {
	return s.driver.StopStream(ctx, s.info.StreamID)
}
