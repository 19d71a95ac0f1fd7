package dto

import "time"

type DriverInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type SampleInput struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

type LocationOutput struct {
	Lat       float64
	Lng       float64
	Accuracy  float64
	Timestamp time.Time
}

type VideoInputOutput struct {
	DeviceID   string
	Label      string
	FacingMode string
}

type OpenStreamInput struct {
	FacingMode string
	DeviceID   string
}

type StreamOutput struct {
	StreamID       string
	DeviceID       string
	Width          int
	Height         int
	TorchSupported bool
}

type FrameOutput struct {
	PNG []byte
}
