package ui

import (
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/tasklist"
	"github.com/charmbracelet/lipgloss"
)

const maxWidth = 80

var (
	colorPrimary = lipgloss.Color("#2563eb")
	colorMuted   = lipgloss.Color("#6b7280")
	colorError   = lipgloss.Color("#dc2626")
	colorBorder  = lipgloss.Color("#d1d5db")
)

// Styles holds the pre-computed styles for the terminal dashboard.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Stat     lipgloss.Style
	Box      lipgloss.Style
	BoxFocus lipgloss.Style
	Selected lipgloss.Style
	Struck   lipgloss.Style
	Modal    lipgloss.Style
	Help     lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Stat: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginRight(1),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),

		BoxFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Bold(true),

		Struck: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(colorMuted),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(1, 3),

		Help: lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1),
	}
}

// Badge renders a priority label in its accent colour.
func (s *Styles) Badge(p models.Priority) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(tasklist.Color(p))).
		Padding(0, 1).
		Render(string(p))
}

// Accent is the left border marking a row's priority.
func (s *Styles) Accent(p models.Priority) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(tasklist.Color(p))).
		Render("┃")
}

func contentWidth(terminalWidth int) int {
	if terminalWidth <= 0 || terminalWidth > maxWidth {
		return maxWidth
	}
	return terminalWidth
}
