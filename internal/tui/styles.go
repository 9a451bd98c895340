package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mgallego/crewplan/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title and headers
	TitleStyle          lipgloss.Style
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	EmployeeStyle       lipgloss.Style
	PeriodLabelStyle    lipgloss.Style

	// Slot cell styles
	TaskStyle         lipgloss.Style
	TaskSelectedStyle lipgloss.Style
	TaskGrabbedStyle  lipgloss.Style
	FreeStyle         lipgloss.Style
	LeaveStyle        lipgloss.Style
	CursorSlotStyle   lipgloss.Style

	// Footer
	FooterStyle  lipgloss.Style
	StatusStyle  lipgloss.Style
	ErrorStyle   lipgloss.Style
	ModeStyle    lipgloss.Style
	KeyHintStyle lipgloss.Style

	// Prompt
	PromptStyle lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	return &Styles{
		palette: p,

		TitleStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		DayHeaderStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Bold(true),
		DayHeaderTodayStyle: lipgloss.NewStyle().
			Foreground(p.Today).
			Bold(true),
		EmployeeStyle: lipgloss.NewStyle().
			Foreground(p.Accent),
		PeriodLabelStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),

		TaskStyle: lipgloss.NewStyle().
			Foreground(p.TextOnTask).
			Background(p.TaskBg),
		TaskSelectedStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BgSelection).
			Bold(true),
		TaskGrabbedStyle: lipgloss.NewStyle().
			Foreground(p.TextOnWarning).
			Background(p.Warning).
			Bold(true),
		FreeStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		LeaveStyle: lipgloss.NewStyle().
			Foreground(p.TextOnLeave).
			Background(p.LeaveBg),
		CursorSlotStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		FooterStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		StatusStyle: lipgloss.NewStyle().
			Foreground(p.Today),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.Leave).
			Bold(true),
		ModeStyle: lipgloss.NewStyle().
			Foreground(p.TextOnWarning).
			Background(p.Warning).
			Padding(0, 1).
			Bold(true),
		KeyHintStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),

		PromptStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(0, 1),
	}
}
