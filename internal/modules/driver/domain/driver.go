package domain

import (
	"errors"
	"fmt"
	"regexp"

	apperrors "worktime/internal/platform/errors"
)

type Capability string

const (
	CapabilityLocation Capability = "location"
	CapabilityCamera   Capability = "camera"
)

var (
	ErrDriverDisabled    = errors.New("device driver is disabled")
	ErrChecksumMismatch  = errors.New("device driver checksum mismatch")
	ErrCapabilityMissing = errors.New("device driver capability missing")
	ErrDriverTimeout     = errors.New("device driver timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("driver name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("driver version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("driver binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("driver sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("driver capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityLocation, CapabilityCamera:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

type LocationRequest struct {
	HighAccuracy bool
	TimeoutMS    int64
	MaximumAgeMS int64
}

type LocationReading struct {
	Lat         float64
	Lng         float64
	Accuracy    float64
	TimestampMS int64
}

type VideoInput struct {
	DeviceID   string
	Label      string
	FacingMode string
}

type StreamRequest struct {
	FacingMode string
	DeviceID   string
}

type StreamInfo struct {
	StreamID       string
	DeviceID       string
	Width          int
	Height         int
	TorchSupported bool
}

// Error codes a driver reports in place of a result.
const (
	CodeUnsupported      = "unsupported"
	CodePermissionDenied = "permission_denied"
	CodeUnavailable      = "unavailable"
	CodeTimeout          = "timeout"
	CodeNotFound         = "not_found"
)

// ErrorForCode maps a driver error code onto the shared error taxonomy.
func ErrorForCode(code, message string) error {
	if code == "" {
		return nil
	}
	var base error
	switch code {
	case CodeUnsupported:
		base = apperrors.ErrUnsupported
	case CodePermissionDenied:
		base = apperrors.ErrPermissionDenied
	case CodeTimeout:
		base = apperrors.ErrTimeout
	case CodeNotFound:
		base = apperrors.ErrNotFound
	default:
		base = apperrors.ErrUnavailable
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}
