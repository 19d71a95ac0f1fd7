package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	xdraw "golang.org/x/image/draw"

	"worktime/internal/modules/capture/domain"
	captureout "worktime/internal/modules/capture/port/out"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/log"
)

// SessionManager owns the single camera stream. opMu serialises every operation that
// touches the stream; mu guards the fields read by Snapshot.
type SessionManager struct {
	camera  captureout.Camera
	shutter captureout.Shutter
	archive captureout.PhotoArchive
	clock   clock.Clock

	opMu sync.Mutex
	mu   sync.Mutex

	state          domain.State
	active         bool
	target         domain.Target
	stream         captureout.Stream
	devices        []domain.DeviceDescriptor
	index          int
	facing         domain.FacingMode
	torchSupported bool
	torchEnabled   bool
	pending        *image.RGBA
	status         string
	photos         map[domain.Target]domain.Photo
}

func NewSessionManager(camera captureout.Camera, shutter captureout.Shutter, archive captureout.PhotoArchive, clock clock.Clock) *SessionManager {
	return &SessionManager{
		camera:  camera,
		shutter: shutter,
		archive: archive,
		clock:   clock,
		state:   domain.StateClosed,
		facing:  domain.FacingEnvironment,
		photos:  map[domain.Target]domain.Photo{},
	}
}

func (m *SessionManager) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *SessionManager) snapshotLocked() domain.Snapshot {
	devices := make([]domain.DeviceDescriptor, len(m.devices))
	copy(devices, m.devices)
	snap := domain.Snapshot{
		State:           m.state,
		Active:          m.active,
		Target:          m.target,
		Devices:         devices,
		DeviceIndex:     m.index,
		FacingMode:      m.facing,
		TorchSupported:  m.torchSupported,
		TorchEnabled:    m.torchEnabled,
		HasPendingFrame: m.pending != nil,
		Status:          m.status,
	}
	if m.stream != nil {
		snap.DeviceID = m.stream.DeviceID()
	}
	return snap
}

func (m *SessionManager) Open(ctx context.Context, target domain.Target) (domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.releaseStream(ctx)

	m.mu.Lock()
	m.active = true
	m.target = target
	m.pending = nil
	m.torchEnabled = false
	m.torchSupported = false
	m.state = domain.StateOpening
	m.status = domain.StatusOpening
	facing := m.facing
	m.mu.Unlock()

	if m.camera == nil {
		return m.fail(domain.StatusUnsupported, apperrors.ErrUnsupported)
	}

	stream, err := m.camera.OpenStream(ctx, captureout.Constraints{FacingMode: facing})
	if err != nil {
		log.Warn(log.Fields{"target": target, "facing": facing, "error": err.Error()}, "[capture.Open] stream request failed")
		status := domain.StatusDenied
		if errors.Is(err, apperrors.ErrUnsupported) {
			status = domain.StatusUnsupported
		}
		return m.fail(status, err)
	}

	devices, err := m.camera.ListVideoInputs(ctx)
	if err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "[capture.Open] device enumeration failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = stream
	if err == nil {
		m.devices = devices
	}
	m.alignIndexLocked()
	m.torchSupported = stream.SupportsTorch()
	m.state = domain.StatePreviewing
	m.status = domain.StatusReady
	log.Debug(log.Fields{"target": target, "device": stream.DeviceID(), "devices": len(m.devices)}, "[capture.Open] previewing")
	return m.snapshotLocked(), nil
}

func (m *SessionManager) fail(status string, err error) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = nil
	m.state = domain.StateClosed
	m.status = status
	return m.snapshotLocked(), err
}

// Capture freezes the current frame into an offscreen raster at the stream's native size.
func (m *SessionManager) Capture(ctx context.Context) (domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	stream := m.stream
	if stream == nil {
		m.status = domain.StatusNotActive
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, apperrors.ErrCameraClosed
	}
	m.mu.Unlock()

	m.playShutter()

	frame, err := stream.ReadFrame(ctx)
	if err != nil {
		return m.Snapshot(), fmt.Errorf("read frame: %w", err)
	}
	size := stream.Resolution().OrDefault()
	raster := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.ApproxBiLinear.Scale(raster, raster.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = raster
	m.state = domain.StateFrameCaptured
	m.status = domain.StatusCaptured
	return m.snapshotLocked(), nil
}

func (m *SessionManager) playShutter() {
	if m.shutter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debug(log.Fields{"panic": fmt.Sprint(r)}, "[capture.Capture] shutter sound failed")
		}
	}()
	m.shutter.Play()
}

func (m *SessionManager) Retake(_ context.Context) (domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	if m.stream != nil {
		m.state = domain.StatePreviewing
	}
	m.status = domain.StatusRetake
	return m.snapshotLocked(), nil
}

// Accept encodes the pending frame, stores it under the session target and closes the session.
func (m *SessionManager) Accept(ctx context.Context) (domain.Photo, domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	pending := m.pending
	target := m.target
	var deviceID string
	if m.stream != nil {
		deviceID = m.stream.DeviceID()
	}
	if pending == nil {
		m.status = domain.StatusNoFrame
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return domain.Photo{}, snap, apperrors.ErrNoPendingFrame
	}
	m.mu.Unlock()

	buf := bytes.Buffer{}
	if err := jpeg.Encode(&buf, pending, &jpeg.Options{Quality: domain.JPEGQuality}); err != nil {
		return domain.Photo{}, m.Snapshot(), fmt.Errorf("encode photo: %w", err)
	}
	photo := domain.Photo{
		Target:     target,
		JPEG:       buf.Bytes(),
		Width:      pending.Bounds().Dx(),
		Height:     pending.Bounds().Dy(),
		DeviceID:   deviceID,
		CapturedAt: m.clock.Now(),
	}

	m.mu.Lock()
	m.photos[target] = photo
	m.mu.Unlock()

	if m.archive != nil {
		if path, err := m.archive.Save(ctx, photo); err != nil {
			log.Warn(log.Fields{"target": target, "error": err.Error()}, "[capture.Accept] archive failed")
		} else {
			log.Debug(log.Fields{"target": target, "path": path}, "[capture.Accept] photo archived")
		}
	}

	m.closeLocked(ctx)
	return photo, m.Snapshot(), nil
}

// SwitchDevice moves to the next camera, or flips facing mode with fewer than two cameras.
// A failed request flips facing mode once more and retries before giving up.
func (m *SessionManager) SwitchDevice(ctx context.Context) (domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if !m.active {
		m.status = domain.StatusNotActive
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, apperrors.ErrCameraClosed
	}
	m.status = domain.StatusSwitching
	m.mu.Unlock()

	if m.camera == nil {
		return m.fail(domain.StatusSwitchFailed, apperrors.ErrUnsupported)
	}

	stream, err := m.switchOnce(ctx)
	if err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "[capture.SwitchDevice] switch failed, flipping facing mode")
		m.mu.Lock()
		m.facing = m.facing.Toggle()
		facing := m.facing
		m.mu.Unlock()
		stream, err = m.camera.OpenStream(ctx, captureout.Constraints{FacingMode: facing})
		if err != nil {
			m.mu.Lock()
			m.pending = nil
			m.mu.Unlock()
			return m.fail(domain.StatusSwitchFailed, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = stream
	m.torchEnabled = false
	m.torchSupported = stream.SupportsTorch()
	if m.pending != nil {
		m.state = domain.StateFrameCaptured
	} else {
		m.state = domain.StatePreviewing
	}
	m.status = domain.StatusSwitched
	return m.snapshotLocked(), nil
}

func (m *SessionManager) switchOnce(ctx context.Context) (captureout.Stream, error) {
	devices, err := m.camera.ListVideoInputs(ctx)
	if err != nil {
		m.releaseStream(ctx)
		return nil, fmt.Errorf("list video inputs: %w", err)
	}

	m.mu.Lock()
	m.devices = devices
	m.alignIndexLocked()
	m.mu.Unlock()

	m.releaseStream(ctx)

	m.mu.Lock()
	var constraints captureout.Constraints
	if len(m.devices) >= 2 {
		m.index = (m.index + 1) % len(m.devices)
		constraints.DeviceID = m.devices[m.index].DeviceID
	} else {
		m.facing = m.facing.Toggle()
		constraints.FacingMode = m.facing
	}
	m.mu.Unlock()

	return m.camera.OpenStream(ctx, constraints)
}

// ToggleTorch flips the torch. Unsupported torches are ignored and a rejected
// constraint leaves the torch off.
func (m *SessionManager) ToggleTorch(ctx context.Context) (domain.Snapshot, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	stream := m.stream
	supported := m.torchSupported
	want := !m.torchEnabled
	m.mu.Unlock()
	if stream == nil || !supported {
		return m.Snapshot(), nil
	}

	err := stream.ApplyTorch(ctx, want)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		log.Warn(log.Fields{"want": want, "error": err.Error()}, "[capture.ToggleTorch] torch constraint rejected")
		m.torchEnabled = false
	} else {
		m.torchEnabled = want
	}
	return m.snapshotLocked(), nil
}

func (m *SessionManager) Close(ctx context.Context) domain.Snapshot {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.closeLocked(ctx)
	return m.Snapshot()
}

// closeLocked expects opMu to be held.
func (m *SessionManager) closeLocked(ctx context.Context) {
	m.releaseStream(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.pending = nil
	m.state = domain.StateClosed
	m.status = domain.StatusClosed
}

// releaseStream turns the torch off and stops the stream, if there is one. Expects opMu.
func (m *SessionManager) releaseStream(ctx context.Context) {
	m.mu.Lock()
	stream := m.stream
	torchOn := m.torchEnabled
	m.stream = nil
	m.torchEnabled = false
	m.torchSupported = false
	m.mu.Unlock()
	if stream == nil {
		return
	}
	if torchOn {
		if err := stream.ApplyTorch(ctx, false); err != nil {
			log.Debug(log.Fields{"error": err.Error()}, "[capture.releaseStream] torch off failed")
		}
	}
	if err := stream.Stop(ctx); err != nil {
		log.Warn(log.Fields{"device": stream.DeviceID(), "error": err.Error()}, "[capture.releaseStream] stop failed")
	}
}

func (m *SessionManager) alignIndexLocked() {
	if m.stream != nil {
		current := m.stream.DeviceID()
		for i, d := range m.devices {
			if d.DeviceID == current {
				m.index = i
				return
			}
		}
	}
	if m.index >= len(m.devices) {
		m.index = 0
	}
}

// Preview returns the frozen raster while a frame is pending, otherwise a live frame.
func (m *SessionManager) Preview(ctx context.Context) (image.Image, bool, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	pending := m.pending
	stream := m.stream
	m.mu.Unlock()
	if pending != nil {
		return pending, true, nil
	}
	if stream == nil {
		return nil, false, apperrors.ErrCameraClosed
	}
	frame, err := stream.ReadFrame(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("read preview frame: %w", err)
	}
	return frame, false, nil
}

func (m *SessionManager) Photo(target domain.Target) (domain.Photo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	photo, ok := m.photos[target]
	return photo, ok
}

func (m *SessionManager) Devices(ctx context.Context) ([]domain.DeviceDescriptor, error) {
	if m.camera == nil {
		return nil, apperrors.ErrUnsupported
	}
	return m.camera.ListVideoInputs(ctx)
}
