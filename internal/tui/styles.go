package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the workspace. The dark_mode setting picks one.
type Theme struct {
	Header  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	OK      lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Accent  lipgloss.Color
}

var (
	lightTheme = Theme{
		Header:  lipgloss.Color("25"),
		Label:   lipgloss.Color("240"),
		Value:   lipgloss.Color("232"),
		Muted:   lipgloss.Color("245"),
		Border:  lipgloss.Color("250"),
		OK:      lipgloss.Color("28"),
		Warning: lipgloss.Color("136"),
		Error:   lipgloss.Color("160"),
		Accent:  lipgloss.Color("31"),
	}
	darkTheme = Theme{
		Header:  lipgloss.Color("75"),
		Label:   lipgloss.Color("248"),
		Value:   lipgloss.Color("255"),
		Muted:   lipgloss.Color("242"),
		Border:  lipgloss.Color("238"),
		OK:      lipgloss.Color("114"),
		Warning: lipgloss.Color("221"),
		Error:   lipgloss.Color("203"),
		Accent:  lipgloss.Color("117"),
	}
)

// ThemeFor returns the dark or light theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return darkTheme
	}
	return lightTheme
}

// StatusColor maps a Jira status category color name onto the theme.
func (t Theme) StatusColor(colorName string) lipgloss.Color {
	switch colorName {
	case "green":
		return t.OK
	case "yellow":
		return t.Warning
	case "blue-gray", "medium-gray":
		return t.Muted
	case "red", "warm-red":
		return t.Error
	default:
		return t.Value
	}
}

type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	fresh    lipgloss.Style
	stale    lipgloss.Style
	failed   lipgloss.Style
	notice   lipgloss.Style
	errText  lipgloss.Style
	box      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Header),
		label:    lipgloss.NewStyle().Foreground(t.Label),
		value:    lipgloss.NewStyle().Foreground(t.Value).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		fresh:    lipgloss.NewStyle().Foreground(t.OK),
		stale:    lipgloss.NewStyle().Foreground(t.Muted),
		failed:   lipgloss.NewStyle().Foreground(t.Error),
		notice:   lipgloss.NewStyle().Foreground(t.OK).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(t.Error),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
	}
}

// RenderStatus renders a status name in its category color.
func RenderStatus(t Theme, status, colorName string) string {
	return lipgloss.NewStyle().Foreground(t.StatusColor(colorName)).Bold(true).Render(status)
}
