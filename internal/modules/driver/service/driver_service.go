package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"worktime/internal/modules/driver/domain"
	"worktime/internal/modules/driver/dto"
	driverout "worktime/internal/modules/driver/port/out"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/log"
)

type DriverService struct {
	store driverout.ManifestStore
	host  driverout.Host

	mu       sync.Mutex
	verified map[string]string
}

func NewDriverService(store driverout.ManifestStore, host driverout.Host) *DriverService {
	return &DriverService{store: store, host: host, verified: map[string]string{}}
}

func (s *DriverService) Info(ctx context.Context) (dto.DriverInfo, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return dto.DriverInfo{}, err
	}
	caps := make([]string, 0, len(m.Capabilities))
	for _, c := range m.Capabilities {
		caps = append(caps, string(c))
	}
	return dto.DriverInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps}, nil
}

func (s *DriverService) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return dto.DoctorResult{}, err
	}
	result := dto.DoctorResult{Name: m.Name}
	if err := m.Validate(); err != nil {
		result.Error = err.Error()
		return result, nil
	}
	binaryOK := fileExists(m.Binary)
	result.BinaryReachable = binaryOK
	checksumOK := false
	if binaryOK {
		checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
	}
	result.ChecksumValid = checksumOK
	if binaryOK && checksumOK && m.Enabled && s.host != nil {
		if err := s.host.CheckLifecycle(ctx, m); err != nil {
			result.Error = err.Error()
		} else {
			result.LifecycleOK = true
		}
	}
	if !binaryOK {
		result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
	}
	if binaryOK && !checksumOK {
		result.Error = "checksum mismatch"
	}
	return result, nil
}

func (s *DriverService) SampleLocation(ctx context.Context, input dto.SampleInput) (dto.LocationOutput, error) {
	m, err := s.runnable(ctx, domain.CapabilityLocation)
	if err != nil {
		return dto.LocationOutput{}, err
	}
	reading, err := s.host.SampleLocation(ctx, m, domain.LocationRequest{
		HighAccuracy: input.HighAccuracy,
		TimeoutMS:    input.Timeout.Milliseconds(),
		MaximumAgeMS: input.MaximumAge.Milliseconds(),
	})
	if err != nil {
		return dto.LocationOutput{}, err
	}
	return dto.LocationOutput{
		Lat:       reading.Lat,
		Lng:       reading.Lng,
		Accuracy:  reading.Accuracy,
		Timestamp: time.UnixMilli(reading.TimestampMS),
	}, nil
}

func (s *DriverService) ListVideoInputs(ctx context.Context) ([]dto.VideoInputOutput, error) {
	m, err := s.runnable(ctx, domain.CapabilityCamera)
	if err != nil {
		return nil, err
	}
	inputs, err := s.host.ListVideoInputs(ctx, m)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VideoInputOutput, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, dto.VideoInputOutput{DeviceID: in.DeviceID, Label: in.Label, FacingMode: in.FacingMode})
	}
	return out, nil
}

func (s *DriverService) OpenStream(ctx context.Context, input dto.OpenStreamInput) (dto.StreamOutput, error) {
	m, err := s.runnable(ctx, domain.CapabilityCamera)
	if err != nil {
		return dto.StreamOutput{}, err
	}
	info, err := s.host.OpenStream(ctx, m, domain.StreamRequest{FacingMode: input.FacingMode, DeviceID: input.DeviceID})
	if err != nil {
		return dto.StreamOutput{}, err
	}
	log.Debug(log.Fields{"stream": info.StreamID, "device": info.DeviceID}, "[driver.OpenStream] stream opened")
	return dto.StreamOutput{
		StreamID:       info.StreamID,
		DeviceID:       info.DeviceID,
		Width:          info.Width,
		Height:         info.Height,
		TorchSupported: info.TorchSupported,
	}, nil
}

func (s *DriverService) ReadFrame(ctx context.Context, streamID string) (dto.FrameOutput, error) {
	m, err := s.runnable(ctx, domain.CapabilityCamera)
	if err != nil {
		return dto.FrameOutput{}, err
	}
	png, err := s.host.ReadFrame(ctx, m, streamID)
	if err != nil {
		return dto.FrameOutput{}, err
	}
	return dto.FrameOutput{PNG: png}, nil
}

func (s *DriverService) ApplyTorch(ctx context.Context, streamID string, on bool) error {
	m, err := s.runnable(ctx, domain.CapabilityCamera)
	if err != nil {
		return err
	}
	return s.host.ApplyTorch(ctx, m, streamID, on)
}

func (s *DriverService) StopStream(ctx context.Context, streamID string) error {
	m, err := s.runnable(ctx, domain.CapabilityCamera)
	if err != nil {
		return err
	}
	return s.host.StopStream(ctx, m, streamID)
}

func (s *DriverService) Shutdown(_ context.Context) error {
	if s.host == nil {
		return nil
	}
	return s.host.Close()
}

// runnable returns the manifest when it may serve capability. A driver that is absent,
// disabled or lacks the capability reports apperrors.ErrUnsupported.
func (s *DriverService) runnable(ctx context.Context, capability domain.Capability) (domain.Manifest, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	if m.Binary == "" || s.host == nil {
		return domain.Manifest{}, fmt.Errorf("%w: no device driver configured", apperrors.ErrUnsupported)
	}
	if err := m.Validate(); err != nil {
		return domain.Manifest{}, fmt.Errorf("%w: %v", apperrors.ErrDriverUnavailable, err)
	}
	if !m.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %w: %s", apperrors.ErrUnsupported, domain.ErrDriverDisabled, m.Name)
	}
	if !m.HasCapability(capability) {
		return domain.Manifest{}, fmt.Errorf("%w: %w: %s", apperrors.ErrUnsupported, domain.ErrCapabilityMissing, capability)
	}
	if err := s.verifyOnce(m); err != nil {
		return domain.Manifest{}, err
	}
	return m, nil
}

func (s *DriverService) verifyOnce(m domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verified[m.Binary] == m.SHA256 {
		return nil
	}
	if err := checksumMatches(m.Binary, m.SHA256); err != nil {
		if errors.Is(err, domain.ErrChecksumMismatch) {
			log.Error(log.Fields{"binary": m.Binary}, "[driver.verify] checksum mismatch")
		}
		return fmt.Errorf("%w: %w", apperrors.ErrDriverUnavailable, err)
	}
	s.verified[m.Binary] = m.SHA256
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func checksumMatches(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open driver binary: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash driver binary: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != expected {
		return domain.ErrChecksumMismatch
	}
	return nil
}
