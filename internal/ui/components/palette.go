package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"worktime/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Action is one entry the palette can run. Actions must stay in sync with the
// switch in app/model.go runAction.
type Action struct {
	ID   string
	Args string
	Key  string
	Help string
}

var Actions = []Action{
	{ID: "gps-checkin", Key: "g", Help: "cek lokasi untuk absen masuk"},
	{ID: "gps-checkout", Help: "cek lokasi untuk absen keluar"},
	{ID: "open-camera", Args: "<checkin|overtime>", Key: "o/v", Help: "buka kamera"},
	{ID: "close-camera", Key: "x", Help: "tutup kamera"},
	{ID: "capture-photo", Key: "space", Help: "ambil foto"},
	{ID: "use-photo", Key: "enter", Help: "gunakan foto"},
	{ID: "retake-photo", Key: "r", Help: "ulangi foto"},
	{ID: "switch-camera", Key: "s", Help: "ganti kamera"},
	{ID: "toggle-flash", Key: "f", Help: "nyalakan/matikan flash"},
	{ID: "checkin", Key: "i", Help: "absen masuk"},
	{ID: "checkout", Key: "k", Help: "absen keluar"},
	{ID: "overtime", Key: "l", Help: "mulai lembur"},
	{ID: "overtime-end", Key: "e", Help: "selesai lembur"},
	{ID: "journal", Help: "riwayat pengiriman"},
}

// Match returns up to limit actions for the first word of input: exact id
// first, then prefix matches, then the rest containing it.
func Match(input string, limit int) []Action {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		if limit > len(Actions) {
			limit = len(Actions)
		}
		return Actions[:limit]
	}
	q := fields[0]
	var exact, prefix, contains []Action
	for _, a := range Actions {
		switch {
		case a.ID == q:
			exact = append(exact, a)
		case strings.HasPrefix(a.ID, q):
			prefix = append(prefix, a)
		case strings.Contains(a.ID, q):
			contains = append(contains, a)
		}
	}
	out := append(append(exact, prefix...), contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type an action…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "tab":
			// complete to the first match, keeping any arguments already typed
			val := p.input.Value()
			if m := Match(val, 1); len(m) == 1 {
				rest := ""
				if fields := strings.Fields(val); len(fields) > 1 {
					rest = " " + strings.Join(fields[1:], " ")
				} else if m[0].Args != "" {
					rest = " "
				}
				p.input.SetValue(m[0].ID + rest)
				p.input.CursorEnd()
			}
			return p, nil
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matching := Match(p.input.Value(), 6)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Actions") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, a := range matching {
			label := a.ID
			if a.Args != "" {
				label += " " + a.Args
			}
			line := fmt.Sprintf("  %-32s %s", label, a.Help)
			if a.Key != "" {
				line += " [" + a.Key + "]"
			}
			sb.WriteString(hintStyle.Render(line) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
