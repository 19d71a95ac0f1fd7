package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	presencedto "worktime/internal/modules/presence/dto"
	"worktime/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the slice of the presence use case this view drives.
type Port interface {
	Refresh(ctx context.Context) (presencedto.VerdictOutput, error)
	ResolveAddress(ctx context.Context, generation uint64) (presencedto.VerdictOutput, bool, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// VerdictMsg carries a freshly evaluated verdict.
type VerdictMsg struct {
	Verdict presencedto.VerdictOutput
	Err     error
}

// AddressMsg carries the verdict with its address attached. Applied is false
// when a newer sample superseded the one the lookup was started for.
type AddressMsg struct {
	Verdict presencedto.VerdictOutput
	Applied bool
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the Presence tab.
type Model struct {
	port     Port
	spinner  spinner.Model
	verdict  presencedto.VerdictOutput
	has      bool
	sampling bool
	err      error
	width    int
	height   int
}

func New(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, spinner: sp}
}

func (m Model) Init() tea.Cmd { return nil }

// Refresh starts a new sample. Earlier samples still in flight are not cancelled.
func (m *Model) Refresh() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.sampling = true
	port := m.port
	return tea.Batch(func() tea.Msg {
		verdict, err := port.Refresh(context.Background())
		return VerdictMsg{Verdict: verdict, Err: err}
	}, m.spinner.Tick)
}

func (m Model) Verdict() (presencedto.VerdictOutput, bool) {
	return m.verdict, m.has
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case VerdictMsg:
		m.sampling = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.verdict = msg.Verdict
		m.has = true
		if msg.Verdict.HasFix {
			return m, m.resolveCmd(msg.Verdict.Generation)
		}

	case AddressMsg:
		if msg.Err == nil && msg.Applied && msg.Verdict.Generation == m.verdict.Generation {
			m.verdict = msg.Verdict
		}

	case spinner.TickMsg:
		if m.sampling {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Lokasi") + "\n\n")
	if m.sampling {
		sb.WriteString(m.spinner.View() + " Mengambil lokasi…\n\n")
	}
	if m.err != nil {
		sb.WriteString(theme.Bad.Render(m.err.Error()) + "\n")
		return m.frame(sb.String())
	}
	if !m.has {
		sb.WriteString(theme.Muted.Render("Tekan g untuk memeriksa lokasi.") + "\n")
		return m.frame(sb.String())
	}

	v := m.verdict
	explanation := theme.Bad.Render(v.Explanation)
	if v.Allowed {
		explanation = theme.Good.Render(v.Explanation)
	}
	sb.WriteString(explanation + "\n\n")
	if v.HasFix {
		rows := [][2]string{
			{"Koordinat", v.CoordinateText},
			{"Jarak", fmt.Sprintf("%.0f m", v.DistanceMeters)},
			{"Akurasi", fmt.Sprintf("±%d m", v.AccuracyMeters)},
			{"Umur", v.Age.Truncate(time.Second).String()},
			{"Alamat", addressText(v)},
		}
		for _, row := range rows {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-10s", row[0])) + " " + row[1] + "\n")
		}
		sb.WriteString("\n")
		sb.WriteString(checkLine("Dalam radius", v.WithinRadius) + "  ")
		sb.WriteString(checkLine("Akurasi", v.AccuracyAcceptable) + "  ")
		sb.WriteString(checkLine("Segar", v.FreshEnough) + "\n")
	}
	return m.frame(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) resolveCmd(generation uint64) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		verdict, applied, err := port.ResolveAddress(context.Background(), generation)
		return AddressMsg{Verdict: verdict, Applied: applied, Err: err}
	}
}

func (m Model) frame(body string) string {
	style := theme.Pane
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(body)
}

func addressText(v presencedto.VerdictOutput) string {
	if !v.AddressResolved {
		return theme.Muted.Render("Mencari alamat…")
	}
	return v.Address
}

func checkLine(label string, ok bool) string {
	if ok {
		return theme.Good.Render("✓ " + label)
	}
	return theme.Bad.Render("✗ " + label)
}
