package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	attendancedto "worktime/internal/modules/attendance/dto"
	capturedto "worktime/internal/modules/capture/dto"
	presencedto "worktime/internal/modules/presence/dto"
	"worktime/internal/ui/components"
	"worktime/internal/ui/theme"
	attendanceview "worktime/internal/ui/views/attendance"
	cameraview "worktime/internal/ui/views/camera"
	presenceview "worktime/internal/ui/views/presence"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type presencePort interface {
	Refresh(ctx context.Context) (presencedto.VerdictOutput, error)
	ResolveAddress(ctx context.Context, generation uint64) (presencedto.VerdictOutput, bool, error)
}

type capturePort interface {
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

type attendancePort interface {
	Status(ctx context.Context) (attendancedto.StatusOutput, error)
	CheckIn(ctx context.Context) (attendancedto.SubmitOutput, error)
	CheckOut(ctx context.Context) (attendancedto.SubmitOutput, error)
	StartOvertime(ctx context.Context) (attendancedto.SubmitOutput, error)
	EndOvertime(ctx context.Context) (attendancedto.SubmitOutput, error)
	Journal(ctx context.Context, limit int) ([]attendancedto.JournalEntry, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPresence tabID = iota
	tabCamera
	tabAttendance
	tabCount
)

var tabLabels = [tabCount]string{
	"Presence", "Camera", "Attendance",
}

// ─── async messages ──────────────────────────────────────────────────────────

type clockTickMsg time.Time

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab         key.Binding
	Help        key.Binding
	Palette     key.Binding
	Quit        key.Binding
	GPS         key.Binding
	OpenCheckIn key.Binding
	OpenProof   key.Binding
	Shutter     key.Binding
	Use         key.Binding
	Retake      key.Binding
	Switch      key.Binding
	Flash       key.Binding
	CloseCam    key.Binding
	CheckIn     key.Binding
	CheckOut    key.Binding
	Overtime    key.Binding
	OvertimeEnd key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:     key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		GPS:         key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "check location")),
		OpenCheckIn: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "camera: check-in photo")),
		OpenProof:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "camera: overtime proof")),
		Shutter:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "capture")),
		Use:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use photo")),
		Retake:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retake")),
		Switch:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "switch camera")),
		Flash:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flash")),
		CloseCam:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close camera")),
		CheckIn:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "check in")),
		CheckOut:    key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "check out")),
		Overtime:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "start overtime")),
		OvertimeEnd: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end overtime")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.GPS, k.OpenCheckIn, k.OpenProof},
		{k.Shutter, k.Use, k.Retake, k.Switch, k.Flash, k.CloseCam},
		{k.CheckIn, k.CheckOut, k.Overtime, k.OvertimeEnd},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay,
// and the action palette. Rendering is delegated to sub-views.
type Model struct {
	presenceView   presenceview.Model
	cameraView     cameraview.Model
	attendanceView attendanceview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(presence presencePort, capture capturePort, attendance attendancePort) Model {
	var (
		presenceV   = presenceview.New(nil)
		cameraV     = cameraview.New(nil)
		attendanceV = attendanceview.New(nil)
	)
	if presence != nil {
		presenceV = presenceview.New(presence)
	}
	if capture != nil {
		cameraV = cameraview.New(capture)
	}
	if attendance != nil {
		attendanceV = attendanceview.New(attendance)
	}
	return Model{
		presenceView:   presenceV,
		cameraView:     cameraV,
		attendanceView: attendanceV,
		activeTab:      tabPresence,
		keys:           defaultKeys(),
		help:           help.New(),
		palette:        components.NewPalette(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.presenceView.Init(),
		m.cameraView.Init(),
		m.attendanceView.Init(),
		tickClock(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case clockTickMsg:
		// late status counts down while the tab is visible
		if m.activeTab == tabAttendance && !m.attendanceView.Busy() {
			cmds = append(cmds, m.attendanceView.Reload())
		}
		cmds = append(cmds, tickClock())
		return m, tea.Batch(cmds...)

	case components.PaletteSubmitMsg:
		return m.runAction(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	// View messages go to their owner regardless of the visible tab.
	case presenceview.VerdictMsg:
		if msg.Err != nil {
			m.status = "presence: " + msg.Err.Error()
		} else {
			m.status = "presence: " + msg.Verdict.Explanation
		}
		var cmd tea.Cmd
		m.presenceView, cmd = m.presenceView.Update(msg)
		// gates follow the new verdict
		return m, tea.Batch(cmd, m.attendanceView.Reload())

	case presenceview.AddressMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.presenceView, cmd = m.presenceView.Update(msg)
		return m, cmd

	case cameraview.SnapshotMsg, cameraview.FrameMsg, cameraview.PreviewTickMsg:
		var cmd tea.Cmd
		m.cameraView, cmd = m.cameraView.Update(msg)
		return m, cmd

	case cameraview.AcceptedMsg:
		if msg.Err != nil {
			m.status = "camera: " + msg.Err.Error()
		} else {
			m.status = "photo ready for " + msg.Result.Photo.Target
		}
		var cmd tea.Cmd
		m.cameraView, cmd = m.cameraView.Update(msg)
		return m, tea.Batch(cmd, m.attendanceView.Reload())

	case attendanceview.StatusMsg:
		var cmd tea.Cmd
		m.attendanceView, cmd = m.attendanceView.Update(msg)
		return m, cmd

	case attendanceview.SubmittedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = msg.Result.Message
		}
		var cmd tea.Cmd
		m.attendanceView, cmd = m.attendanceView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Err == nil && msg.Result.RefreshPresence {
			cmds = append(cmds, m.presenceView.Refresh())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		}

		if action, ok := m.keyAction(msg); ok {
			return m.runAction(action)
		}
	}

	// Everything else goes to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPresence:
		m.presenceView, tabCmd = m.presenceView.Update(msg)
	case tabCamera:
		m.cameraView, tabCmd = m.cameraView.Update(msg)
	case tabAttendance:
		m.attendanceView, tabCmd = m.attendanceView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// keyAction maps a key press to a palette action id.
func (m Model) keyAction(msg tea.KeyMsg) (string, bool) {
	camera := m.cameraView.Active()
	switch {
	case key.Matches(msg, m.keys.GPS):
		return "gps-checkin", true
	case key.Matches(msg, m.keys.OpenCheckIn):
		return "open-camera checkin", true
	case key.Matches(msg, m.keys.OpenProof):
		return "open-camera overtime", true
	case key.Matches(msg, m.keys.CheckIn):
		return "checkin", true
	case key.Matches(msg, m.keys.CheckOut):
		return "checkout", true
	case key.Matches(msg, m.keys.Overtime):
		return "overtime", true
	case key.Matches(msg, m.keys.OvertimeEnd):
		return "overtime-end", true
	}
	if !camera {
		return "", false
	}
	switch {
	case key.Matches(msg, m.keys.Shutter):
		return "capture-photo", true
	case key.Matches(msg, m.keys.Use):
		return "use-photo", true
	case key.Matches(msg, m.keys.Retake):
		return "retake-photo", true
	case key.Matches(msg, m.keys.Switch):
		return "switch-camera", true
	case key.Matches(msg, m.keys.Flash):
		return "toggle-flash", true
	case key.Matches(msg, m.keys.CloseCam):
		return "close-camera", true
	}
	return "", false
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPresence:
		return m.presenceView.View()
	case tabCamera:
		return m.cameraView.View()
	case tabAttendance:
		return m.attendanceView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "worktime  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if verdict, ok := m.presenceView.Verdict(); ok {
		left = theme.Gate("lokasi", verdict.Allowed) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::actions  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── actions ─────────────────────────────────────────────────────────────────

// runAction executes one action id, from the palette or a key binding.
func (m Model) runAction(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "gps-checkin", "gps-checkout":
		m.activeTab = tabPresence
		m.status = "checking location…"
		return m, m.presenceView.Refresh()

	case "open-camera":
		target := "checkin"
		if len(parts) >= 2 {
			target = parts[1]
		}
		m.activeTab = tabCamera
		return m, m.cameraView.Open(target)

	case "close-camera":
		return m, m.cameraView.Close()

	case "capture-photo":
		return m, m.cameraView.Capture()

	case "use-photo":
		return m, m.cameraView.Accept()

	case "retake-photo":
		return m, m.cameraView.Retake()

	case "switch-camera":
		return m, m.cameraView.Switch()

	case "toggle-flash":
		return m, m.cameraView.Torch()

	case "checkin", "checkout", "overtime", "overtime-end":
		m.activeTab = tabAttendance
		m.status = "sending " + parts[0] + "…"
		return m, m.submit(parts[0])

	case "journal":
		m.activeTab = tabAttendance
		return m, m.attendanceView.Reload()

	default:
		m.status = "unknown action: " + parts[0]
	}
	return m, nil
}

// submit needs the pointer so the view records that a request is in flight.
func (m *Model) submit(action string) tea.Cmd {
	switch action {
	case "checkin":
		return m.attendanceView.CheckIn()
	case "checkout":
		return m.attendanceView.CheckOut()
	case "overtime":
		return m.attendanceView.StartOvertime()
	default:
		return m.attendanceView.EndOvertime()
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.presenceView, _ = m.presenceView.Update(sz)
	m.cameraView, _ = m.cameraView.Update(sz)
	m.attendanceView, _ = m.attendanceView.Update(sz)
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
