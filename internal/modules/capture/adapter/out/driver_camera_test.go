package out

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"worktime/internal/modules/capture/domain"
	captureout "worktime/internal/modules/capture/port/out"
	driverdto "worktime/internal/modules/driver/dto"
	driverin "worktime/internal/modules/driver/port/in"
)

type stubDriver struct {
	driverin.Usecase
	opened  driverdto.OpenStreamInput
	torch   []bool
	stopped []string
	frame   []byte
}

func (s *stubDriver) ListVideoInputs(context.Context) ([]driverdto.VideoInputOutput, error) {
	return []driverdto.VideoInputOutput{{DeviceID: "cam-1", Label: "Back"}, {DeviceID: "cam-2", Label: "Front"}}, nil
}

func (s *stubDriver) OpenStream(_ context.Context, input driverdto.OpenStreamInput) (driverdto.StreamOutput, error) {
	s.opened = input
	return driverdto.StreamOutput{StreamID: "s1", DeviceID: "cam-2", Width: 4, Height: 2, TorchSupported: true}, nil
}

func (s *stubDriver) ReadFrame(_ context.Context, streamID string) (driverdto.FrameOutput, error) {
	return driverdto.FrameOutput{PNG: s.frame}, nil
}

func (s *stubDriver) ApplyTorch(_ context.Context, _ string, on bool) error {
	s.torch = append(s.torch, on)
	return nil
}

func (s *stubDriver) StopStream(_ context.Context, streamID string) error {
	s.stopped = append(s.stopped, streamID)
	return nil
}

func pngFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDriverCameraStreamLifecycle(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{frame: pngFrame(t)}
	camera := NewDriverCamera(driver)

	devices, err := camera.ListVideoInputs(context.Background())
	if err != nil || len(devices) != 2 || devices[1].Label != "Front" {
		t.Fatalf("unexpected devices %+v err=%v", devices, err)
	}

	stream, err := camera.OpenStream(context.Background(), captureout.Constraints{FacingMode: domain.FacingUser})
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if driver.opened.FacingMode != "user" || driver.opened.DeviceID != "" {
		t.Fatalf("constraints not forwarded: %+v", driver.opened)
	}
	if stream.DeviceID() != "cam-2" || !stream.SupportsTorch() || stream.Resolution() != (domain.Resolution{Width: 4, Height: 2}) {
		t.Fatalf("unexpected stream info")
	}

	img, err := stream.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 != 255 {
		t.Fatalf("frame pixel not decoded")
	}
	if err := stream.ApplyTorch(context.Background(), true); err != nil {
		t.Fatalf("torch: %v", err)
	}
	if err := stream.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(driver.torch) != 1 || !driver.torch[0] || len(driver.stopped) != 1 || driver.stopped[0] != "s1" {
		t.Fatalf("driver calls not recorded: torch=%v stopped=%v", driver.torch, driver.stopped)
	}
}

func TestDriverCameraRejectsCorruptFrame(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{frame: []byte("not a png")}
	stream, err := NewDriverCamera(driver).OpenStream(context.Background(), captureout.Constraints{DeviceID: "cam-2"})
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if _, err := stream.ReadFrame(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
