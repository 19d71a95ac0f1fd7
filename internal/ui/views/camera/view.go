package camera

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	capturedto "worktime/internal/modules/capture/dto"
	"worktime/internal/ui/components"
	"worktime/internal/ui/theme"
)

const previewInterval = 250 * time.Millisecond

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the capture use case as seen by the Camera tab.
type Port interface {
	Open(ctx context.Context, target string) (capturedto.SnapshotOutput, error)
	Capture(ctx context.Context) (capturedto.SnapshotOutput, error)
	Retake(ctx context.Context) (capturedto.SnapshotOutput, error)
	Accept(ctx context.Context) (capturedto.AcceptOutput, error)
	SwitchDevice(ctx context.Context) (capturedto.SnapshotOutput, error)
	ToggleTorch(ctx context.Context) (capturedto.SnapshotOutput, error)
	Close(ctx context.Context) (capturedto.SnapshotOutput, error)
	Snapshot(ctx context.Context) (capturedto.SnapshotOutput, error)
	Preview(ctx context.Context) (capturedto.FrameOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// SnapshotMsg reports the session state after an action.
type SnapshotMsg struct {
	Snapshot capturedto.SnapshotOutput
	Err      error
}

// AcceptedMsg is sent when the pending frame was stored as a photo.
type AcceptedMsg struct {
	Result capturedto.AcceptOutput
	Err    error
}

// FrameMsg carries one preview frame.
type FrameMsg struct {
	Frame capturedto.FrameOutput
	Err   error
}

// PreviewTickMsg schedules the next preview frame.
type PreviewTickMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the Camera tab.
type Model struct {
	port     Port
	snapshot capturedto.SnapshotOutput
	frame    capturedto.FrameOutput
	ticking  bool
	err      error
	notice   string
	width    int
	height   int
}

func New(port Port) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		snap, err := port.Snapshot(context.Background())
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) Active() bool { return m.snapshot.Active }

func (m Model) Open(target string) tea.Cmd {
	return m.snapshotCmd(func(p Port, ctx context.Context) (capturedto.SnapshotOutput, error) {
		return p.Open(ctx, target)
	})
}

func (m Model) Capture() tea.Cmd {
	return m.snapshotCmd(Port.Capture)
}

func (m Model) Retake() tea.Cmd {
	return m.snapshotCmd(Port.Retake)
}

func (m Model) Switch() tea.Cmd {
	return m.snapshotCmd(Port.SwitchDevice)
}

func (m Model) Torch() tea.Cmd {
	return m.snapshotCmd(Port.ToggleTorch)
}

func (m Model) Close() tea.Cmd {
	return m.snapshotCmd(Port.Close)
}

func (m Model) Accept() tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		res, err := port.Accept(context.Background())
		return AcceptedMsg{Result: res, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SnapshotMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.notice = ""
		}
		// failed actions still report the session they left behind
		if msg.Snapshot.State != "" {
			m.snapshot = msg.Snapshot
		}
		if !m.snapshot.Active {
			m.frame = capturedto.FrameOutput{}
		}
		return m, m.startPreview()

	case AcceptedMsg:
		if msg.Result.Snapshot.State != "" {
			m.snapshot = msg.Result.Snapshot
		}
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.frame = capturedto.FrameOutput{}
		m.notice = fmt.Sprintf("Foto %s tersimpan (%dx%d).", msg.Result.Photo.Target, msg.Result.Photo.Width, msg.Result.Photo.Height)

	case PreviewTickMsg:
		if !m.snapshot.Active {
			m.ticking = false
			return m, nil
		}
		return m, m.frameCmd()

	case FrameMsg:
		if msg.Err == nil {
			m.frame = msg.Frame
		}
		if !m.snapshot.Active {
			m.ticking = false
			return m, nil
		}
		return m, tickPreview()
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Kamera") + "\n\n")

	snap := m.snapshot
	if snap.Active {
		torch := "flash n/a"
		if snap.TorchSupported {
			torch = "flash off"
			if snap.TorchEnabled {
				torch = "flash on"
			}
		}
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s · %s · %s · %s",
			snap.Target, deviceLabel(snap), snap.FacingMode, torch)) + "\n\n")
		sb.WriteString(m.renderFrame() + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("Kamera tertutup. o: foto absen · v: bukti lembur") + "\n")
	}

	if snap.Status != "" {
		sb.WriteString("\n" + theme.Warn.Render(snap.Status) + "\n")
	}
	if m.notice != "" {
		sb.WriteString("\n" + theme.Good.Render(m.notice) + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + theme.Bad.Render(m.err.Error()) + "\n")
	}
	if snap.Active {
		hint := "space capture · s switch · f flash · x close"
		if snap.HasPendingFrame {
			hint = "enter use · r retake · x close"
		}
		sb.WriteString("\n" + theme.Muted.Render(hint))
	}

	style := theme.Pane
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) snapshotCmd(call func(Port, context.Context) (capturedto.SnapshotOutput, error)) tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		snap, err := call(port, context.Background())
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) frameCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		frame, err := port.Preview(context.Background())
		return FrameMsg{Frame: frame, Err: err}
	}
}

// startPreview begins the preview loop unless one is already running.
func (m *Model) startPreview() tea.Cmd {
	if !m.snapshot.Active || m.ticking || m.port == nil {
		return nil
	}
	m.ticking = true
	return m.frameCmd()
}

func tickPreview() tea.Cmd {
	return tea.Tick(previewInterval, func(time.Time) tea.Msg { return PreviewTickMsg{} })
}

func (m Model) renderFrame() string {
	if m.frame.Image == nil {
		return theme.Muted.Render("Menunggu gambar…")
	}
	maxCols := m.width - 8
	if maxCols < 16 {
		maxCols = 64
	}
	maxRows := m.height - 14
	if maxRows < 8 {
		maxRows = 20
	}
	cols, rows := components.FitFrame(m.frame.Image.Bounds(), maxCols, maxRows)
	art := components.ASCIIFrame(m.frame.Image, cols, rows)
	if m.frame.Frozen {
		return lipgloss.NewStyle().Foreground(theme.Peach).Render(art)
	}
	return art
}

func deviceLabel(snap capturedto.SnapshotOutput) string {
	if snap.DeviceIndex >= 0 && snap.DeviceIndex < len(snap.Devices) {
		if label := snap.Devices[snap.DeviceIndex].Label; label != "" {
			return label
		}
	}
	if snap.DeviceID != "" {
		return snap.DeviceID
	}
	return "default"
}
