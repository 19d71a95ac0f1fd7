package domain

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	JPEGQuality   = 90
	DefaultWidth  = 640
	DefaultHeight = 360
)

const (
	StatusOpening      = "Menyiapkan kamera..."
	StatusReady        = "Arahkan kamera lalu tekan tombol kamera."
	StatusDenied       = "Akses kamera ditolak atau tidak tersedia."
	StatusUnsupported  = "Perangkat tidak mendukung akses kamera."
	StatusNotActive    = "Kamera belum aktif."
	StatusCaptured     = "Foto tertangkap. Klik ikon centang untuk gunakan."
	StatusRetake       = "Ulangi pengambilan foto."
	StatusNoFrame      = "Ambil foto terlebih dahulu."
	StatusSwitching    = "Mengganti kamera..."
	StatusSwitched     = "Kamera berhasil diganti."
	StatusSwitchFailed = "Gagal mengganti kamera."
	StatusClosed       = ""
)

type State string

const (
	StateClosed        State = "closed"
	StateOpening       State = "opening"
	StatePreviewing    State = "previewing"
	StateFrameCaptured State = "frame_captured"
)

// Target is the slot an accepted photo is stored under.
type Target string

const (
	TargetCheckIn  Target = "checkin"
	TargetOvertime Target = "overtime"
)

func ParseTarget(raw string) (Target, error) {
	switch Target(raw) {
	case TargetCheckIn, TargetOvertime:
		return Target(raw), nil
	default:
		return "", fmt.Errorf("unknown capture target %q", raw)
	}
}

type FacingMode string

const (
	FacingEnvironment FacingMode = "environment"
	FacingUser        FacingMode = "user"
)

func (f FacingMode) Toggle() FacingMode {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

type DeviceDescriptor struct {
	DeviceID string `json:"device_id"`
	Label    string `json:"label"`
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OrDefault falls back to 640x360 when the stream reports no size.
func (r Resolution) OrDefault() Resolution {
	if r.Width <= 0 || r.Height <= 0 {
		return Resolution{Width: DefaultWidth, Height: DefaultHeight}
	}
	return r
}

type Photo struct {
	Target     Target
	JPEG       []byte
	Width      int
	Height     int
	DeviceID   string
	CapturedAt time.Time
}

// DataURL is the inline image source used by display surfaces and submissions.
func (p Photo) DataURL() string {
	if len(p.JPEG) == 0 {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(p.JPEG)
}

// Snapshot is a copy of the session for display. Active stays true after a failed
// open or switch so the user can retry without reopening.
type Snapshot struct {
	State           State
	Active          bool
	Target          Target
	Devices         []DeviceDescriptor
	DeviceIndex     int
	DeviceID        string
	FacingMode      FacingMode
	TorchSupported  bool
	TorchEnabled    bool
	HasPendingFrame bool
	Status          string
}
