package searchselect

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type person struct {
	id, name, note string
}

func (p person) ItemID() string     { return p.id }
func (p person) ItemLabel() string  { return p.name }
func (p person) ItemDetail() string { return p.note }

type fakeSource struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]person
	err     error
}

func (f *fakeSource) Search(_ context.Context, q string) (Results[person], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return Results[person]{}, f.err
	}
	return Flat(f.results[q]), nil
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestModel(t *testing.T, src Source[person], mutate ...func(*Options[person])) Model[person] {
	t.Helper()
	opts := Options[person]{
		Source:          src,
		Debounce:        time.Millisecond,
		BlurGrace:       time.Millisecond,
		HighlightFirst:  true,
		SoleMatchCommit: true,
		Capture:         NewMouseCapture(),
		Width:           30,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	m := New(opts)
	m.Focus()
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// typeText sends s one rune at a time and returns the commands produced by
// each keystroke, without running them.
func typeText(m Model[person], s string) (Model[person], []tea.Cmd) {
	var cmds []tea.Cmd
	for _, r := range s {
		var cmd tea.Cmd
		m, cmd = m.Update(keyRunes(string(r)))
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, cmds
}

// settle runs cmd and feeds every resulting message back into the model
// until nothing is left, returning the ChangedMsgs seen on the way.
func settle(m Model[person], cmds ...tea.Cmd) (Model[person], []ChangedMsg) {
	var changed []ChangedMsg
	queue := append([]tea.Cmd(nil), cmds...)
	for len(queue) > 0 {
		cmd := queue[0]
		queue = queue[1:]
		for _, msg := range runCmd(cmd) {
			if c, ok := msg.(ChangedMsg); ok {
				changed = append(changed, c)
				continue
			}
			var next tea.Cmd
			m, next = m.Update(msg)
			if next != nil {
				queue = append(queue, next)
			}
		}
	}
	return m, changed
}

// search types s and lets the debounce and fetch complete.
func search(m Model[person], s string) Model[person] {
	m, cmds := typeText(m, s)
	m, _ = settle(m, cmds...)
	return m
}
