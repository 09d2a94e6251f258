package searchselect

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// line is one rendered dropdown line: a group header (row == -1) or a row.
type line struct {
	header string
	row    int
}

func (m Model[T]) lines() []line {
	var out []line
	row := 0
	for _, g := range m.results.Groups() {
		if m.results.IsGrouped() {
			out = append(out, line{header: g.Name, row: -1})
		}
		for range g.Items {
			out = append(out, line{row: row})
			row++
		}
	}
	return out
}

// dropdownHeight is the number of lines below the input while open.
func (m Model[T]) dropdownHeight() int {
	if !m.open {
		return 0
	}
	n := len(m.lines())
	if n == 0 {
		return 1
	}
	return min(n, m.opts.MaxRows)
}

// SetOrigin records the screen cell where the host drew the first line of
// View. Mouse hit-testing is relative to it.
func (m *Model[T]) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// Bounds returns the rendered rectangle in screen cells.
func (m Model[T]) Bounds() (x, y, width, height int) {
	return m.originX, m.originY, m.opts.Width, 1 + m.dropdownHeight()
}

// Contains reports whether the screen cell lies within the rendered bounds.
func (m Model[T]) Contains(x, y int) bool {
	bx, by, w, h := m.Bounds()
	return x >= bx && x < bx+w && y >= by && y < by+h
}

func (m Model[T]) handleMouse(msg tea.MouseMsg) (Model[T], tea.Cmd) {
	if !m.open {
		return m, nil
	}
	inside := m.Contains(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inside && msg.Action == tea.MouseActionPress {
			m.moveHighlight(-1)
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if inside && msg.Action == tea.MouseActionPress {
			m.moveHighlight(1)
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if !inside {
		return m, m.setOpen(false)
	}
	ry := msg.Y - m.originY
	if ry == 0 {
		return m, nil
	}
	lines := m.lines()
	idx := m.offset + ry - 1
	if idx < 0 || idx >= len(lines) || lines[idx].row < 0 {
		return m, nil
	}
	rows := m.results.Rows()
	return m, m.commit(rows[lines[idx].row])
}

func (m *Model[T]) scrollToHighlight() {
	if m.highlight < 0 {
		m.offset = 0
		return
	}
	lines := m.lines()
	at := 0
	for i, l := range lines {
		if l.row == m.highlight {
			at = i
			break
		}
	}
	// Keep a group header visible above its first row.
	top := at
	if top > 0 && lines[top-1].row < 0 {
		top--
	}
	if top < m.offset {
		m.offset = top
	}
	if at >= m.offset+m.opts.MaxRows {
		m.offset = at - m.opts.MaxRows + 1
	}
}

// View implements tea.Model.
func (m Model[T]) View() string {
	if m.torn {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	if m.loading {
		b.WriteString(m.styles.Loading.Render(" …"))
	}
	if !m.open {
		return b.String()
	}

	width := m.opts.Width
	lines := m.lines()
	if len(lines) == 0 {
		b.WriteByte('\n')
		b.WriteString(m.styles.Empty.Render(pad(m.emptyText(), width)))
		return b.String()
	}

	rows := m.results.Rows()
	end := min(len(lines), m.offset+m.opts.MaxRows)
	for _, l := range lines[m.offset:end] {
		b.WriteByte('\n')
		if l.row < 0 {
			b.WriteString(m.styles.Group.Render(pad(l.header, width)))
			continue
		}
		b.WriteString(m.renderRow(rows[l.row], l.row == m.highlight, width))
	}
	return b.String()
}

func (m Model[T]) emptyText() string {
	switch {
	case m.loading:
		return "searching…"
	case strings.TrimSpace(m.input.Value()) == "":
		return fmt.Sprintf("type at least %d characters", m.opts.MinQueryLen)
	default:
		return "no results"
	}
}

func (m Model[T]) renderRow(item T, highlighted bool, width int) string {
	marker := "  "
	if highlighted {
		marker = "› "
	}
	avail := max(0, width-runewidth.StringWidth(marker))
	label := runewidth.Truncate(item.ItemLabel(), avail, "…")
	detail := ""
	if d, ok := any(item).(Detailer); ok {
		if rest := avail - runewidth.StringWidth(label); rest > 3 && d.ItemDetail() != "" {
			detail = runewidth.Truncate("  "+d.ItemDetail(), rest, "…")
		}
	}

	if highlighted {
		return m.styles.Highlight.Render(pad(marker+label+detail, width))
	}
	fill := width - runewidth.StringWidth(marker+label+detail)
	return m.styles.Row.Render(marker+label) +
		m.styles.Detail.Render(detail) +
		strings.Repeat(" ", max(0, fill))
}

func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
