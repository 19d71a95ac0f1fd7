package attendance

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	attendancedto "worktime/internal/modules/attendance/dto"
	"worktime/internal/ui/theme"
)

const journalLimit = 10

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the attendance use case as seen by the Attendance tab.
type Port interface {
	Status(ctx context.Context) (attendancedto.StatusOutput, error)
	CheckIn(ctx context.Context) (attendancedto.SubmitOutput, error)
	CheckOut(ctx context.Context) (attendancedto.SubmitOutput, error)
	StartOvertime(ctx context.Context) (attendancedto.SubmitOutput, error)
	EndOvertime(ctx context.Context) (attendancedto.SubmitOutput, error)
	Journal(ctx context.Context, limit int) ([]attendancedto.JournalEntry, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// StatusMsg carries the day's status and recent journal.
type StatusMsg struct {
	Status  attendancedto.StatusOutput
	Journal []attendancedto.JournalEntry
	Err     error
}

// SubmittedMsg is sent when an attendance action finished, successfully or not.
type SubmittedMsg struct {
	Result attendancedto.SubmitOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the Attendance tab.
type Model struct {
	port     Port
	viewport viewport.Model
	renderer *glamour.TermRenderer
	status   attendancedto.StatusOutput
	journal  []attendancedto.JournalEntry
	loaded   bool
	busy     bool
	message  string
	failed   bool
	width    int
	height   int
}

func New(port Port) Model {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, viewport: viewport.New(0, 0), renderer: r}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

// Reload fetches status and journal.
func (m Model) Reload() tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		ctx := context.Background()
		status, err := port.Status(ctx)
		if err != nil {
			return StatusMsg{Err: err}
		}
		journal, err := port.Journal(ctx, journalLimit)
		return StatusMsg{Status: status, Journal: journal, Err: err}
	}
}

func (m *Model) CheckIn() tea.Cmd       { return m.submit(Port.CheckIn) }
func (m *Model) CheckOut() tea.Cmd      { return m.submit(Port.CheckOut) }
func (m *Model) StartOvertime() tea.Cmd { return m.submit(Port.StartOvertime) }
func (m *Model) EndOvertime() tea.Cmd   { return m.submit(Port.EndOvertime) }

func (m Model) Busy() bool { return m.busy }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.viewport.SetContent(m.renderContent())

	case StatusMsg:
		if msg.Err != nil {
			m.message = msg.Err.Error()
			m.failed = true
		} else {
			m.status = msg.Status
			m.journal = msg.Journal
			m.loaded = true
		}
		m.viewport.SetContent(m.renderContent())

	case SubmittedMsg:
		m.busy = false
		if msg.Err != nil {
			m.message = msg.Err.Error()
			m.failed = true
		} else {
			m.message = msg.Result.Message
			m.failed = false
			if msg.Result.Warning != "" {
				m.message += " " + msg.Result.Warning
				m.failed = true
			}
			m.status = msg.Result.Status
		}
		m.viewport.SetContent(m.renderContent())
		cmds = append(cmds, m.Reload())
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := theme.Title.Render("Absensi")
	if m.busy {
		header += " " + theme.Muted.Render("mengirim…")
	}
	footer := ""
	if m.message != "" {
		if m.failed {
			footer = theme.Bad.Render(m.message)
		} else {
			footer = theme.Good.Render(m.message)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

// ─── private ─────────────────────────────────────────────────────────────────

// submit refuses to stack a second request on top of one in flight.
func (m *Model) submit(call func(Port, context.Context) (attendancedto.SubmitOutput, error)) tea.Cmd {
	if m.port == nil || m.busy {
		return nil
	}
	m.busy = true
	port := m.port
	return func() tea.Msg {
		res, err := call(port, context.Background())
		return SubmittedMsg{Result: res, Err: err}
	}
}

func (m *Model) resize() {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	if m.renderer != nil && m.width > 4 {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(m.width-4),
		)
		if err == nil {
			m.renderer = r
		}
	}
}

func (m Model) renderContent() string {
	if !m.loaded {
		return theme.Muted.Render("Memuat status…")
	}
	md := statusMarkdown(m.status, m.journal)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func statusMarkdown(s attendancedto.StatusOutput, journal []attendancedto.JournalEntry) string {
	var sb strings.Builder
	day := s.Record.Day
	if day == "" {
		day = "hari ini"
	}
	fmt.Fprintf(&sb, "## %s\n\n", day)
	if !s.ServerNow.IsZero() {
		fmt.Fprintf(&sb, "Jam server: **%s**\n\n", s.ServerNow.Format("15:04:05"))
	}
	if s.LateStatus != "" {
		if s.Late {
			fmt.Fprintf(&sb, "> ⚠ %s\n\n", s.LateStatus)
		} else {
			fmt.Fprintf(&sb, "> %s\n\n", s.LateStatus)
		}
	}
	if s.Explanation != "" {
		fmt.Fprintf(&sb, "Lokasi: %s\n\n", s.Explanation)
	}

	sb.WriteString("### Aksi\n\n")
	sec := s.Sections
	if sec.ShowCheckIn {
		fmt.Fprintf(&sb, "- %s absen masuk (i)\n", mark(s.Gates.CheckIn))
	} else if sec.CheckInNote != "" {
		fmt.Fprintf(&sb, "- %s\n", sec.CheckInNote)
	}
	if sec.ShowCheckOut {
		fmt.Fprintf(&sb, "- %s absen keluar (k)\n", mark(s.Gates.CheckOut))
	} else if sec.CheckOutNote != "" {
		fmt.Fprintf(&sb, "- %s\n", sec.CheckOutNote)
	}
	if sec.ShowOvertime {
		fmt.Fprintf(&sb, "- %s mulai lembur (l)\n", mark(s.Gates.Overtime))
	}
	if sec.ShowOvertimeEnd {
		fmt.Fprintf(&sb, "- %s selesai lembur (e)\n", mark(s.Gates.OvertimeEnd))
	}

	if len(journal) > 0 {
		sb.WriteString("\n### Riwayat\n\n| Waktu | Aksi | Hasil |\n|---|---|---|\n")
		for _, e := range journal {
			result := "✓ " + e.Message
			if !e.OK {
				result = "✗ " + e.Message
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", e.At.Local().Format("02 Jan 15:04"), e.Kind, strings.ReplaceAll(result, "|", "/"))
		}
	}
	return sb.String()
}

func mark(enabled bool) string {
	if enabled {
		return "**aktif**"
	}
	return "~~nonaktif~~"
}
