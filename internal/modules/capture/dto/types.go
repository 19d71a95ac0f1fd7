package dto

import (
	"image"
	"time"
)

type DeviceInfo struct {
	DeviceID string
	Label    string
}

type SnapshotOutput struct {
	State           string
	Active          bool
	Target          string
	Devices         []DeviceInfo
	DeviceIndex     int
	DeviceID        string
	FacingMode      string
	TorchSupported  bool
	TorchEnabled    bool
	HasPendingFrame bool
	Status          string
}

type PhotoOutput struct {
	Target     string
	DataURL    string
	JPEG       []byte
	Width      int
	Height     int
	DeviceID   string
	CapturedAt time.Time
}

type AcceptOutput struct {
	Photo    PhotoOutput
	Snapshot SnapshotOutput
}

// FrameOutput carries a preview frame. Frozen is true while a captured frame awaits a decision.
type FrameOutput struct {
	Image  image.Image
	Frozen bool
}
