package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	driverrpc "worktime/internal/modules/driver/adapter/out/rpc"
	"worktime/internal/modules/driver/domain"
	driverout "worktime/internal/modules/driver/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 12 * time.Second
)

type connection struct {
	client *plugin.Client
	rpc    driverrpc.DeviceDriverClient
}

// GRPCHost keeps one driver process per binary alive until Close.
type GRPCHost struct {
	mu    sync.Mutex
	conns map[string]*connection
}

func NewGRPCHost() driverout.Host {
	return &GRPCHost{conns: map[string]*connection{}}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, err := h.shared(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, h.transportError(manifest, callCtx, "get metadata", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) SampleLocation(ctx context.Context, manifest domain.Manifest, req domain.LocationRequest) (domain.LocationReading, error) {
	client, err := h.shared(manifest)
	if err != nil {
		return domain.LocationReading{}, err
	}
	timeout := defaultCallTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS)*time.Millisecond + 2*time.Second
	}
	callCtx, cancel := h.callContext(ctx, timeout)
	defer cancel()

	resp, err := client.SampleLocation(callCtx, &driverrpc.SampleLocationRequest{
		HighAccuracy: req.HighAccuracy,
		TimeoutMS:    req.TimeoutMS,
		MaximumAgeMS: req.MaximumAgeMS,
	})
	if err != nil {
		return domain.LocationReading{}, h.transportError(manifest, callCtx, "sample location", err)
	}
	if err := domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage); err != nil {
		return domain.LocationReading{}, err
	}
	return domain.LocationReading{Lat: resp.Lat, Lng: resp.Lng, Accuracy: resp.Accuracy, TimestampMS: resp.TimestampMS}, nil
}

func (h *GRPCHost) ListVideoInputs(ctx context.Context, manifest domain.Manifest) ([]domain.VideoInput, error) {
	client, err := h.shared(manifest)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.ListVideoInputs(callCtx)
	if err != nil {
		return nil, h.transportError(manifest, callCtx, "list video inputs", err)
	}
	if err := domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage); err != nil {
		return nil, err
	}
	out := make([]domain.VideoInput, 0, len(resp.Inputs))
	for _, in := range resp.Inputs {
		out = append(out, domain.VideoInput{DeviceID: in.DeviceID, Label: in.Label, FacingMode: in.FacingMode})
	}
	return out, nil
}

func (h *GRPCHost) OpenStream(ctx context.Context, manifest domain.Manifest, req domain.StreamRequest) (domain.StreamInfo, error) {
	client, err := h.shared(manifest)
	if err != nil {
		return domain.StreamInfo{}, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.OpenStream(callCtx, &driverrpc.OpenStreamRequest{FacingMode: req.FacingMode, DeviceID: req.DeviceID})
	if err != nil {
		return domain.StreamInfo{}, h.transportError(manifest, callCtx, "open stream", err)
	}
	if err := domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage); err != nil {
		return domain.StreamInfo{}, err
	}
	return domain.StreamInfo{
		StreamID:       resp.StreamID,
		DeviceID:       resp.DeviceID,
		Width:          resp.Width,
		Height:         resp.Height,
		TorchSupported: resp.TorchSupported,
	}, nil
}

func (h *GRPCHost) ReadFrame(ctx context.Context, manifest domain.Manifest, streamID string) ([]byte, error) {
	client, err := h.shared(manifest)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.ReadFrame(callCtx, &driverrpc.StreamRequest{StreamID: streamID})
	if err != nil {
		return nil, h.transportError(manifest, callCtx, "read frame", err)
	}
	if err := domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return resp.PNG, nil
}

func (h *GRPCHost) ApplyTorch(ctx context.Context, manifest domain.Manifest, streamID string, on bool) error {
	client, err := h.shared(manifest)
	if err != nil {
		return err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.ApplyTorch(callCtx, &driverrpc.ApplyTorchRequest{StreamID: streamID, On: on})
	if err != nil {
		return h.transportError(manifest, callCtx, "apply torch", err)
	}
	return domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage)
}

func (h *GRPCHost) StopStream(ctx context.Context, manifest domain.Manifest, streamID string) error {
	client, err := h.shared(manifest)
	if err != nil {
		return err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.StopStream(callCtx, &driverrpc.StreamRequest{StreamID: streamID})
	if err != nil {
		return h.transportError(manifest, callCtx, "stop stream", err)
	}
	return domain.ErrorForCode(resp.ErrorCode, resp.ErrorMessage)
}

func (h *GRPCHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, conn := range h.conns {
		conn.client.Kill()
		delete(h.conns, key)
	}
	return nil
}

func (h *GRPCHost) shared(manifest domain.Manifest) (driverrpc.DeviceDriverClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[manifest.Binary]; ok && !conn.client.Exited() {
		return conn.rpc, nil
	}
	client, err := h.start(manifest, defaultStartTimeout)
	if err != nil {
		return nil, err
	}
	h.conns[manifest.Binary] = client
	return client.rpc, nil
}

// transportError drops the cached connection so the next call restarts the driver.
func (h *GRPCHost) transportError(manifest domain.Manifest, callCtx context.Context, op string, err error) error {
	h.mu.Lock()
	if conn, ok := h.conns[manifest.Binary]; ok && conn.client.Exited() {
		delete(h.conns, manifest.Binary)
	}
	h.mu.Unlock()
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrDriverTimeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (driverrpc.DeviceDriverClient, func(), error) {
	conn, err := h.start(manifest, startTimeout)
	if err != nil {
		return nil, nil, err
	}
	return conn.rpc, func() { conn.client.Kill() }, nil
}

func (h *GRPCHost) start(manifest domain.Manifest, startTimeout time.Duration) (*connection, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  driverrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          driverrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start driver client: %w", err)
	}
	raw, err := rpcClient.Dispense(driverrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense driver: %w", err)
	}
	typed, ok := raw.(driverrpc.DeviceDriverClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("driver rpc client type mismatch")
	}
	return &connection{client: client, rpc: typed}, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
