package searchselect

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State is the dropdown state.
type State int

const (
	Closed State = iota
	OpenEmpty
	OpenWithResults
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenEmpty:
		return "open-empty"
	case OpenWithResults:
		return "open-with-results"
	default:
		return "unknown"
	}
}

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// ChangedMsg is emitted once per commit, and with Cleared set when the field
// is cleared. Picker identifies the emitting Model.
type ChangedMsg struct {
	Picker  int
	ID      string
	Label   string
	Cleared bool
}

type debounceMsg struct {
	id  int
	tag int
}

type resultMsg[T Item] struct {
	id      int
	gen     uint64
	query   string
	results Results[T]
	err     error
}

type blurCloseMsg struct {
	id  int
	tag int
}

// Model is a single search-select field.
type Model[T Item] struct {
	id   int
	opts Options[T]
	keys KeyMap

	styles Styles
	input  textinput.Model

	debounceTag int
	blurTag     int
	generation  uint64
	cancel      context.CancelFunc

	results   Results[T]
	highlight int
	offset    int
	open      bool
	loading   bool

	selected    T
	hasSelected bool

	originX, originY int
	torn             bool
}

// New builds an unfocused, closed Model.
func New[T Item](opts Options[T]) Model[T] {
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Placeholder = opts.Placeholder
	ti.CharLimit = 256
	ti.Width = max(1, opts.Width-utf8.RuneCountInString(opts.Prompt)-1)
	ti.Cursor.SetMode(cursor.CursorStatic)

	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	return Model[T]{
		id:        nextID(),
		opts:      opts,
		keys:      keys,
		styles:    styles,
		input:     ti,
		highlight: -1,
	}
}

// ID identifies this instance in ChangedMsg.
func (m Model[T]) ID() int { return m.id }

// Init implements tea.Model.
func (m Model[T]) Init() tea.Cmd { return nil }

// Query returns the current input text.
func (m Model[T]) Query() string { return m.input.Value() }

// State returns the dropdown state.
func (m Model[T]) State() State {
	switch {
	case !m.open:
		return Closed
	case m.results.Len() == 0:
		return OpenEmpty
	default:
		return OpenWithResults
	}
}

// Highlight returns the highlighted row index, or -1.
func (m Model[T]) Highlight() int { return m.highlight }

// Rows returns the current flattened result rows.
func (m Model[T]) Rows() []T { return m.results.Rows() }

// Results returns the current result set.
func (m Model[T]) Results() Results[T] { return m.results }

// Loading reports whether the newest issued fetch is still outstanding.
func (m Model[T]) Loading() bool { return m.loading }

// Focused reports whether the input has focus.
func (m Model[T]) Focused() bool { return m.input.Focused() }

// Closed reports whether Close has been called.
func (m Model[T]) Closed() bool { return m.torn }

// Value returns the committed item's id, or "" when nothing is selected.
func (m Model[T]) Value() string {
	if !m.hasSelected {
		return ""
	}
	return m.selected.ItemID()
}

// Selected returns the committed item.
func (m Model[T]) Selected() (T, bool) { return m.selected, m.hasSelected }

// KeyMap returns the active bindings.
func (m Model[T]) KeyMap() KeyMap { return m.keys }

// Focus gives the input focus and reopens the dropdown when earlier results
// are still held. A pending blur close is cancelled.
func (m *Model[T]) Focus() tea.Cmd {
	if m.torn {
		return nil
	}
	m.blurTag++
	cmd := m.input.Focus()
	if m.results.Len() > 0 {
		return tea.Batch(cmd, m.setOpen(true))
	}
	return cmd
}

// Blur removes focus. An open dropdown stays open for BlurGrace so a mouse
// press on a row that arrives after the blur still commits.
func (m *Model[T]) Blur() tea.Cmd {
	if m.torn {
		return nil
	}
	m.input.Blur()
	if !m.open {
		return nil
	}
	m.blurTag++
	id, tag := m.id, m.blurTag
	return tea.Tick(m.opts.BlurGrace, func(time.Time) tea.Msg {
		return blurCloseMsg{id: id, tag: tag}
	})
}

// SetValue reconciles the field with a value chosen outside the component,
// for example a form reset. No ChangedMsg is emitted. Passing ok=false
// clears the field.
func (m *Model[T]) SetValue(item T, ok bool) tea.Cmd {
	if m.torn {
		return nil
	}
	m.invalidate()
	var zero T
	m.selected, m.hasSelected = zero, false
	label := ""
	if ok {
		m.selected, m.hasSelected = item, true
		label = item.ItemLabel()
	}
	m.input.SetValue(label)
	m.input.CursorEnd()
	m.setResults(Results[T]{})
	return m.setOpen(false)
}

// Clear empties the field and emits a cleared ChangedMsg.
func (m *Model[T]) Clear() tea.Cmd {
	if m.torn {
		return nil
	}
	var zero T
	m.selected, m.hasSelected = zero, false
	m.invalidate()
	m.input.SetValue("")
	m.setResults(Results[T]{})
	id := m.id
	return tea.Batch(m.setOpen(false), func() tea.Msg {
		return ChangedMsg{Picker: id, Cleared: true}
	})
}

// Close tears the component down: the in-flight request is cancelled,
// pending timers are invalidated, the mouse capture is released and every
// later message is ignored.
func (m *Model[T]) Close() tea.Cmd {
	if m.torn {
		return nil
	}
	m.invalidate()
	m.blurTag++
	m.input.Blur()
	cmd := m.setOpen(false)
	m.torn = true
	m.opts.Logger.Debug("searchselect.closed", "picker", m.id)
	return cmd
}

// Update implements tea.Model.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	if m.torn {
		return m, nil
	}

	switch msg := msg.(type) {
	case debounceMsg:
		if msg.id != m.id || msg.tag != m.debounceTag {
			return m, nil
		}
		return m, m.fetch(m.input.Value())

	case resultMsg[T]:
		if msg.id != m.id || msg.gen != m.generation {
			return m, nil
		}
		return m, m.apply(msg)

	case blurCloseMsg:
		if msg.id != m.id || msg.tag != m.blurTag || m.input.Focused() {
			return m, nil
		}
		return m, m.setOpen(false)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.input.Focused() {
			return m, nil
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model[T]) handleKey(msg tea.KeyMsg) (Model[T], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if !m.open {
			return m, m.setOpen(true)
		}
		m.moveHighlight(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if !m.open {
			return m, m.setOpen(true)
		}
		m.moveHighlight(-1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if !m.open {
			return m, nil
		}
		rows := m.results.Rows()
		switch {
		case m.highlight >= 0 && m.highlight < len(rows):
			return m, m.commit(rows[m.highlight])
		case m.highlight == -1 && len(rows) == 1 && m.opts.SoleMatchCommit:
			return m, m.commit(rows[0])
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		return m, m.setOpen(false)

	case key.Matches(msg, m.keys.Clear):
		return m, m.Clear()
	}

	before := m.input.Value()
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, inputCmd
	}
	return m, tea.Batch(inputCmd, m.onQueryChange(m.input.Value()))
}

// onQueryChange cancels the pending debounce tick and either schedules a new
// one or, for short queries, drops all results.
func (m *Model[T]) onQueryChange(text string) tea.Cmd {
	m.debounceTag++
	if utf8.RuneCountInString(strings.TrimSpace(text)) < m.opts.MinQueryLen {
		m.invalidate()
		m.setResults(Results[T]{})
		return m.setOpen(false)
	}
	id, tag := m.id, m.debounceTag
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id, tag: tag}
	})
}

func (m *Model[T]) moveHighlight(delta int) {
	n := m.results.Len()
	if n == 0 {
		m.highlight = -1
		return
	}
	h := m.highlight + delta
	if delta < 0 {
		h = max(h, 0)
	} else {
		h = min(h, n-1)
	}
	m.highlight = h
	m.scrollToHighlight()
}

func (m *Model[T]) commit(item T) tea.Cmd {
	m.invalidate()
	m.selected, m.hasSelected = item, true
	label := item.ItemLabel()
	m.input.SetValue(label)
	m.input.CursorEnd()
	m.opts.Logger.Debug("searchselect.commit", "picker", m.id, "id", item.ItemID())

	msg := ChangedMsg{Picker: m.id, ID: item.ItemID(), Label: label}
	return tea.Batch(m.setOpen(false), func() tea.Msg { return msg })
}

// invalidate drops every pending debounce tick and in-flight response.
func (m *Model[T]) invalidate() {
	m.debounceTag++
	m.generation++
	m.loading = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model[T]) setResults(r Results[T]) {
	m.results = r
	m.offset = 0
	m.highlight = -1
	if r.Len() > 0 && m.opts.HighlightFirst {
		m.highlight = 0
	}
}

func (m *Model[T]) setOpen(open bool) tea.Cmd {
	if m.open == open {
		return nil
	}
	m.open = open
	if open {
		return m.opts.Capture.Acquire(m.id)
	}
	return m.opts.Capture.Release(m.id)
}
