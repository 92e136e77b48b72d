// Package styles provides colour themes for terminal output.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// Theme defines the colour palette for terminal output.
type Theme struct {
	// Primary is the red ball colour.
	Primary lipgloss.Color

	// Secondary is the blue ball colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#E64553"), // Red
		Secondary:  lipgloss.Color("#1E66F5"), // Blue
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Pink
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme
	plain bool

	Title    lipgloss.Style
	RedBall  lipgloss.Style
	BlueBall lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground),

		RedBall: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		BlueBall: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and files.
func PlainStyles() *Styles {
	s := NewStyles(nil)
	s.plain = true
	return s
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

func (s *Styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

// Draw renders one draw on a single line:
//
//	2024030  2024-03-17 (日)  01 05 12 20 28 33 | 07
func (s *Styles) Draw(d domain.DrawRecord) string {
	reds := make([]string, len(d.PrimaryNumbers))
	for i, n := range d.PrimaryNumbers {
		reds[i] = s.render(s.RedBall, fmt.Sprintf("%02d", n))
	}

	var b strings.Builder
	b.WriteString(s.render(s.Title, d.IssueLabel))
	b.WriteString("  ")
	b.WriteString(s.render(s.Muted, d.DrawTimestamp))
	if d.WeekdayLabel != "" {
		b.WriteString(s.render(s.Muted, " ("+d.WeekdayLabel+")"))
	}
	b.WriteString("  ")
	b.WriteString(strings.Join(reds, " "))
	b.WriteString(" | ")
	b.WriteString(s.render(s.BlueBall, fmt.Sprintf("%02d", d.SecondaryNumber)))
	return b.String()
}

// StopReason renders a stop reason coloured by outcome.
func (s *Styles) StopReason(r domain.StopReason) string {
	switch {
	case r.IsFailure():
		return s.render(s.Error, r.String())
	case r == domain.StopPageLimit || r == domain.StopCancelled || r == domain.StopDeadline:
		return s.render(s.Warning, r.String())
	default:
		return s.render(s.Success, r.String())
	}
}
