package searchselect

import "github.com/charmbracelet/lipgloss"

// Styles controls how the dropdown renders.
type Styles struct {
	Row       lipgloss.Style
	Highlight lipgloss.Style
	Detail    lipgloss.Style
	Group     lipgloss.Style
	Empty     lipgloss.Style
	Loading   lipgloss.Style
}

// DefaultStyles uses the terminal's default colors with a reverse-video
// highlight.
func DefaultStyles() Styles {
	return Styles{
		Row:       lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle().Reverse(true),
		Detail:    lipgloss.NewStyle().Faint(true),
		Group:     lipgloss.NewStyle().Bold(true).Underline(true),
		Empty:     lipgloss.NewStyle().Faint(true).Italic(true),
		Loading:   lipgloss.NewStyle().Faint(true),
	}
}

// SetStyles replaces the dropdown styles, for example after a theme change.
func (m *Model[T]) SetStyles(s Styles) {
	m.styles = s
}
