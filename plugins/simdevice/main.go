package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"sync"
	"time"

	driverrpc "worktime/internal/modules/driver/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type camera struct {
	id     string
	label  string
	facing string
	width  int
	height int
	torch  bool
	tint   color.RGBA
}

var cameras = []camera{
	{id: "sim-back", label: "Simulated back camera", facing: "environment", width: 1280, height: 720, torch: true, tint: color.RGBA{R: 40, G: 120, B: 200, A: 255}},
	{id: "sim-front", label: "Simulated front camera", facing: "user", width: 640, height: 480, tint: color.RGBA{R: 200, G: 140, B: 60, A: 255}},
}

type stream struct {
	cam     camera
	torchOn bool
	frames  int
}

type server struct {
	mu      sync.Mutex
	seq     int
	streams map[string]*stream
}

func newServer() *server {
	return &server{streams: map[string]*stream{}}
}

func (s *server) GetMetadata(_ context.Context, _ *driverrpc.Empty) (*driverrpc.Metadata, error) {
	return &driverrpc.Metadata{
		Name:         "simdevice",
		Version:      "1.0.0",
		Capabilities: []string{"location", "camera"},
	}, nil
}

func (s *server) SampleLocation(_ context.Context, in *driverrpc.SampleLocationRequest) (*driverrpc.SampleLocationResponse, error) {
	switch os.Getenv("WORKTIME_SIM_GPS") {
	case "off":
		return &driverrpc.SampleLocationResponse{Failure: driverrpc.Failure{ErrorCode: "unsupported", ErrorMessage: "no gps receiver"}}, nil
	case "denied":
		return &driverrpc.SampleLocationResponse{Failure: driverrpc.Failure{ErrorCode: "permission_denied", ErrorMessage: "location permission denied"}}, nil
	case "timeout":
		return &driverrpc.SampleLocationResponse{Failure: driverrpc.Failure{ErrorCode: "timeout", ErrorMessage: fmt.Sprintf("no fix within %dms", in.TimeoutMS)}}, nil
	}
	ageMS := envFloat("WORKTIME_SIM_AGE_MS", 0)
	return &driverrpc.SampleLocationResponse{
		Lat:         envFloat("WORKTIME_SIM_LAT", -6.1421841),
		Lng:         envFloat("WORKTIME_SIM_LNG", 106.8164501),
		Accuracy:    envFloat("WORKTIME_SIM_ACCURACY", 12),
		TimestampMS: time.Now().Add(-time.Duration(ageMS) * time.Millisecond).UnixMilli(),
	}, nil
}

func (s *server) ListVideoInputs(_ context.Context, _ *driverrpc.Empty) (*driverrpc.ListVideoInputsResponse, error) {
	out := &driverrpc.ListVideoInputsResponse{}
	for _, c := range cameras {
		out.Inputs = append(out.Inputs, driverrpc.VideoInput{DeviceID: c.id, Label: c.label, FacingMode: c.facing})
	}
	return out, nil
}

func (s *server) OpenStream(_ context.Context, in *driverrpc.OpenStreamRequest) (*driverrpc.OpenStreamResponse, error) {
	if os.Getenv("WORKTIME_SIM_CAMERA") == "denied" {
		return &driverrpc.OpenStreamResponse{Failure: driverrpc.Failure{ErrorCode: "permission_denied", ErrorMessage: "camera permission denied"}}, nil
	}
	var picked *camera
	for i := range cameras {
		c := &cameras[i]
		if in.DeviceID != "" && c.id == in.DeviceID {
			picked = c
			break
		}
		if in.DeviceID == "" && c.facing == in.FacingMode {
			picked = c
			break
		}
	}
	if picked == nil && in.DeviceID == "" {
		picked = &cameras[0]
	}
	if picked == nil {
		return &driverrpc.OpenStreamResponse{Failure: driverrpc.Failure{ErrorCode: "not_found", ErrorMessage: "no camera " + in.DeviceID}}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := "stream-" + strconv.Itoa(s.seq)
	s.streams[id] = &stream{cam: *picked}
	return &driverrpc.OpenStreamResponse{
		StreamID:       id,
		DeviceID:       picked.id,
		Width:          picked.width,
		Height:         picked.height,
		TorchSupported: picked.torch,
	}, nil
}

func (s *server) ReadFrame(_ context.Context, in *driverrpc.StreamRequest) (*driverrpc.ReadFrameResponse, error) {
	s.mu.Lock()
	st, ok := s.streams[in.StreamID]
	if ok {
		st.frames++
	}
	s.mu.Unlock()
	if !ok {
		return &driverrpc.ReadFrameResponse{Failure: driverrpc.Failure{ErrorCode: "not_found", ErrorMessage: "unknown stream"}}, nil
	}

	img := renderFrame(st.cam, st.frames, st.torchOn)
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return &driverrpc.ReadFrameResponse{PNG: buf.Bytes()}, nil
}

func (s *server) ApplyTorch(_ context.Context, in *driverrpc.ApplyTorchRequest) (*driverrpc.AckResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[in.StreamID]
	if !ok {
		return &driverrpc.AckResponse{Failure: driverrpc.Failure{ErrorCode: "not_found", ErrorMessage: "unknown stream"}}, nil
	}
	if !st.cam.torch {
		return &driverrpc.AckResponse{Failure: driverrpc.Failure{ErrorCode: "unsupported", ErrorMessage: "camera has no torch"}}, nil
	}
	st.torchOn = in.On
	return &driverrpc.AckResponse{}, nil
}

func (s *server) StopStream(_ context.Context, in *driverrpc.StreamRequest) (*driverrpc.AckResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, in.StreamID)
	return &driverrpc.AckResponse{}, nil
}

// renderFrame draws a tinted gradient with a bar that moves on every frame.
func renderFrame(c camera, frame int, torch bool) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	barX := (frame * 24) % c.width
	boost := uint8(0)
	if torch {
		boost = 60
	}
	for y := 0; y < c.height; y++ {
		shade := uint8(y * 120 / c.height)
		for x := 0; x < c.width; x++ {
			px := color.RGBA{
				R: clamp(int(c.tint.R) + int(shade) + int(boost)),
				G: clamp(int(c.tint.G) + int(shade)/2 + int(boost)),
				B: clamp(int(c.tint.B) - int(shade)/3 + int(boost)),
				A: 255,
			}
			if x >= barX && x < barX+c.width/16 {
				px = color.RGBA{R: 240, G: 240, B: 240, A: 255}
			}
			img.SetRGBA(x, y, px)
		}
	}
	return img
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: driverrpc.HandshakeConfig,
		Plugins:         driverrpc.PluginMap(newServer()),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
