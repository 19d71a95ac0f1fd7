package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"worktime/internal/modules/driver/domain"
	"worktime/internal/modules/driver/dto"
	"worktime/internal/modules/driver/service"
	apperrors "worktime/internal/platform/errors"
)

type staticStore struct{ manifest domain.Manifest }

func (s staticStore) Load(context.Context) (domain.Manifest, error) { return s.manifest, nil }

type fakeHost struct {
	lifecycleErr error
	reading      domain.LocationReading
	sampleErr    error
	lastRequest  domain.LocationRequest
	opened       []domain.StreamRequest
	stopped      []string
	closed       bool
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return h.lifecycleErr }

func (h *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "simdevice"}, nil
}

func (h *fakeHost) SampleLocation(_ context.Context, _ domain.Manifest, req domain.LocationRequest) (domain.LocationReading, error) {
	h.lastRequest = req
	return h.reading, h.sampleErr
}

func (h *fakeHost) ListVideoInputs(context.Context, domain.Manifest) ([]domain.VideoInput, error) {
	return []domain.VideoInput{{DeviceID: "sim-back", Label: "Back", FacingMode: "environment"}}, nil
}

func (h *fakeHost) OpenStream(_ context.Context, _ domain.Manifest, req domain.StreamRequest) (domain.StreamInfo, error) {
	h.opened = append(h.opened, req)
	return domain.StreamInfo{StreamID: "s1", DeviceID: "sim-back", Width: 1280, Height: 720, TorchSupported: true}, nil
}

func (h *fakeHost) ReadFrame(context.Context, domain.Manifest, string) ([]byte, error) {
	return []byte("png"), nil
}

func (h *fakeHost) ApplyTorch(context.Context, domain.Manifest, string, bool) error { return nil }

func (h *fakeHost) StopStream(_ context.Context, _ domain.Manifest, streamID string) error {
	h.stopped = append(h.stopped, streamID)
	return nil
}

func (h *fakeHost) Close() error {
	h.closed = true
	return nil
}

func writeBinary(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simdevice")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func manifestFor(binary, checksum string, caps ...domain.Capability) domain.Manifest {
	return domain.Manifest{Name: "simdevice", Version: "1.0.0", Binary: binary, SHA256: checksum, Enabled: true, Capabilities: caps}
}

func TestSampleLocationPassesOptions(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "driver")
	host := &fakeHost{reading: domain.LocationReading{Lat: -6.14, Lng: 106.81, Accuracy: 9, TimestampMS: 1772438400000}}
	svc := service.NewDriverService(staticStore{manifestFor(bin, sum, domain.CapabilityLocation)}, host)

	out, err := svc.SampleLocation(context.Background(), dto.SampleInput{HighAccuracy: true, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if host.lastRequest.TimeoutMS != 10000 || !host.lastRequest.HighAccuracy || host.lastRequest.MaximumAgeMS != 0 {
		t.Fatalf("unexpected request %+v", host.lastRequest)
	}
	if out.Lat != -6.14 || out.Timestamp.UnixMilli() != 1772438400000 {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestMissingCapabilityIsUnsupported(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "driver")
	svc := service.NewDriverService(staticStore{manifestFor(bin, sum, domain.CapabilityCamera)}, &fakeHost{})
	if _, err := svc.SampleLocation(context.Background(), dto.SampleInput{}); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestDisabledOrAbsentDriverIsUnsupported(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "driver")
	m := manifestFor(bin, sum, domain.CapabilityCamera)
	m.Enabled = false
	svc := service.NewDriverService(staticStore{m}, &fakeHost{})
	if _, err := svc.ListVideoInputs(context.Background()); !errors.Is(err, apperrors.ErrUnsupported) || !errors.Is(err, domain.ErrDriverDisabled) {
		t.Fatalf("expected disabled unsupported, got %v", err)
	}

	absent := service.NewDriverService(staticStore{domain.Manifest{}}, &fakeHost{})
	if _, err := absent.OpenStream(context.Background(), dto.OpenStreamInput{}); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Fatalf("expected unsupported without binary, got %v", err)
	}
}

func TestChecksumMismatchBlocksCalls(t *testing.T) {
	t.Parallel()
	bin, _ := writeBinary(t, "driver")
	svc := service.NewDriverService(staticStore{manifestFor(bin, strings.Repeat("0", 64), domain.CapabilityCamera)}, &fakeHost{})
	_, err := svc.ListVideoInputs(context.Background())
	if !errors.Is(err, domain.ErrChecksumMismatch) || !errors.Is(err, apperrors.ErrDriverUnavailable) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestStreamLifecycle(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "driver")
	host := &fakeHost{}
	svc := service.NewDriverService(staticStore{manifestFor(bin, sum, domain.CapabilityCamera)}, host)
	ctx := context.Background()

	stream, err := svc.OpenStream(ctx, dto.OpenStreamInput{FacingMode: "environment"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if stream.StreamID != "s1" || !stream.TorchSupported {
		t.Fatalf("unexpected stream %+v", stream)
	}
	if frame, err := svc.ReadFrame(ctx, stream.StreamID); err != nil || string(frame.PNG) != "png" {
		t.Fatalf("unexpected frame %v %v", frame, err)
	}
	if err := svc.StopStream(ctx, stream.StreamID); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(host.stopped) != 1 {
		t.Fatalf("expected one stop, got %v", host.stopped)
	}
	if err := svc.Shutdown(ctx); err != nil || !host.closed {
		t.Fatalf("expected host closed")
	}
}

func TestDoctorReportsChecksumAndLifecycle(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "driver")
	host := &fakeHost{}
	svc := service.NewDriverService(staticStore{manifestFor(bin, sum, domain.CapabilityCamera)}, host)
	result, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !result.BinaryReachable || !result.ChecksumValid || !result.LifecycleOK || result.Error != "" {
		t.Fatalf("unexpected doctor result %+v", result)
	}

	bad := service.NewDriverService(staticStore{manifestFor(bin, strings.Repeat("0", 64), domain.CapabilityCamera)}, host)
	result, _ = bad.Doctor(context.Background())
	if result.ChecksumValid || result.Error != "checksum mismatch" {
		t.Fatalf("expected checksum mismatch, got %+v", result)
	}

	missing := service.NewDriverService(staticStore{manifestFor(filepath.Join(t.TempDir(), "nope"), sum, domain.CapabilityCamera)}, host)
	result, _ = missing.Doctor(context.Background())
	if result.BinaryReachable || !strings.Contains(result.Error, "binary does not exist") {
		t.Fatalf("expected missing binary, got %+v", result)
	}
}
