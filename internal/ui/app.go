package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pkt.systems/pslog"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/config"
	"github.com/parkerfly38/shulpick/internal/prefs"
	"github.com/parkerfly38/shulpick/internal/searchselect"
	"github.com/parkerfly38/shulpick/internal/state"
)

const (
	fieldIndent = 2
	fieldWidth  = 48
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Client  backend.Searcher
	Store   *state.Store
	Search  config.Search
	// Fields are shown top to bottom. Empty means every field.
	Fields    []FieldKind
	Title     string
	ThemeName string
	PrefsPath string
	Prefs     prefs.Prefs
	PollTick  time.Duration
	Logger    pslog.Logger
	// SubmitOnCommit ends the program as soon as any field commits.
	SubmitOnCommit bool
}

// Result is what the form hands back when the program ends.
type Result struct {
	Submitted  bool
	Selections []Selection
}

// Model is the root Bubble Tea model: a form of search-select fields under a
// health header.
type Model struct {
	ctx       context.Context
	store     *state.Store
	logger    pslog.Logger
	prefsPath string
	prefs     prefs.Prefs
	pollTick  time.Duration
	title     string

	theme   Theme
	keys    keyMap
	help    help.Model
	capture *searchselect.MouseCapture

	fields []field
	focus  int

	width    int
	height   int
	snapshot state.Snapshot
	now      time.Time
	status   string

	submitOnCommit bool
	submitted      bool
	done           bool
}

// New creates the form model with the first field focused.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	kinds := opts.Fields
	if len(kinds) == 0 {
		kinds = FieldKinds()
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		logger:    logger,
		prefsPath: prefsPath,
		prefs:     opts.Prefs,
		pollTick:  pollTick,
		title:     opts.Title,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		capture:   searchselect.NewMouseCapture(),

		submitOnCommit: opts.SubmitOnCommit,
	}
	m.prefs.Theme = m.theme.Name

	for _, kind := range kinds {
		m.fields = append(m.fields, m.newField(kind, opts))
	}
	m.applyTheme()
	if len(m.fields) > 0 {
		_ = m.fields[0].Focus()
		m.keys.picker = m.fields[0].KeyMap()
	}
	m.layout()
	return m
}

func (m Model) newField(kind FieldKind, opts Options) field {
	limit := opts.Search.Limit
	switch kind {
	case FieldTier:
		o := fieldOptions[backend.Tier](m, kind, opts)
		o.Source = TierSource(opts.Client, limit)
		o.Placeholder = "tier name or category"
		return newPicker(kind, o)
	case FieldSearch:
		o := fieldOptions[backend.Record](m, kind, opts)
		o.Source = GlobalSource(opts.Client, limit)
		o.Placeholder = "members, students, households…"
		// A single row across several groups is rarely what was meant.
		o.SoleMatchCommit = false
		return newPicker(kind, o)
	default:
		o := fieldOptions[backend.Member](m, kind, opts)
		o.Source = MemberSource(opts.Client, limit)
		o.Placeholder = "name, Hebrew name or email"
		return newPicker(kind, o)
	}
}

func fieldOptions[T searchselect.Item](m Model, kind FieldKind, opts Options) searchselect.Options[T] {
	return searchselect.Options[T]{
		Prompt:          "› ",
		Width:           fieldWidth,
		MinQueryLen:     opts.Search.MinQueryLen,
		Debounce:        opts.Search.Debounce,
		BlurGrace:       opts.Search.BlurGrace,
		HighlightFirst:  opts.Search.HighlightFirst,
		SoleMatchCommit: opts.Search.SoleMatchCommit,
		Capture:         m.capture,
		Logger:          m.logger.With("field", string(kind)),
		Context:         m.ctx,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case searchselect.ChangedMsg:
		m.handleChanged(msg)
		if m.submitOnCommit && !msg.Cleared {
			return m.finish(true)
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.logger.Warn("ui.prefs.save.failed", "path", m.prefsPath, "error", msg.err)
			m.status = "could not save theme: " + msg.err.Error()
		}
		return m, nil
	}

	// Debounce ticks, results and blur timers carry their picker's id, so
	// they can be offered to every field.
	return m, m.broadcast(msg)
}

func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.fields {
		var cmd tea.Cmd
		m.fields[i], cmd = m.fields[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Abort):
		return m.finish(false)

	case key.Matches(msg, m.keys.Submit):
		return m.finish(true)

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus(m.focus + 1)

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus(m.focus - 1)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.prefs.Theme = m.theme.Name
		return m, savePrefsCmd(m.prefsPath, m.prefs)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

// handleMouse offers the event to every field so open dropdowns can react
// to presses outside them, then moves focus to a field pressed on.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	target := -1
	for i, f := range m.fields {
		if f.Contains(msg.X, msg.Y) {
			target = i
			break
		}
	}
	cmd := m.broadcast(msg)
	if target >= 0 && target != m.focus &&
		msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		return m, tea.Batch(cmd, m.setFocus(target))
	}
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.fields)
	if n == 0 {
		return nil
	}
	i = ((i % n) + n) % n
	if i == m.focus {
		return nil
	}
	blur := m.fields[m.focus].Blur()
	m.focus = i
	m.keys.picker = m.fields[i].KeyMap()
	return tea.Batch(blur, m.fields[i].Focus())
}

func (m *Model) handleChanged(msg searchselect.ChangedMsg) {
	for _, f := range m.fields {
		if f.PickerID() != msg.Picker {
			continue
		}
		kind := f.Kind()
		if msg.Cleared {
			m.status = kind.title() + " cleared"
			m.logger.Info("ui.selection.cleared", "field", string(kind))
			return
		}
		m.status = fmt.Sprintf("%s: %s (%s)", kind.title(), msg.Label, msg.ID)
		m.logger.Info("ui.selection", "field", string(kind), "id", msg.ID)
		return
	}
}

// finish tears every field down and quits. Teardown releases the shared
// mouse capture, so the disable command runs before the program exits.
func (m Model) finish(submitted bool) (Model, tea.Cmd) {
	m.submitted = submitted
	m.done = true
	cmds := make([]tea.Cmd, 0, len(m.fields))
	for _, f := range m.fields {
		cmds = append(cmds, f.Close())
	}
	return m, tea.Sequence(tea.Batch(cmds...), tea.Quit)
}

func (m Model) applyTheme() {
	ps := m.theme.PickerStyles()
	for _, f := range m.fields {
		f.SetStyles(ps)
	}
}

// layout records where each field's input line is drawn so mouse events can
// be hit-tested. It must mirror View.
func (m Model) layout() {
	y := lipgloss.Height(m.renderHeader()) + 1
	for _, f := range m.fields {
		f.SetOrigin(fieldIndent, y+1)
		y += 1 + lipgloss.Height(f.View()) + 1
	}
}

// Result returns the committed selections in field order.
func (m Model) Result() Result {
	res := Result{Submitted: m.submitted}
	for _, f := range m.fields {
		if sel, ok := f.Selection(); ok {
			res.Selections = append(res.Selections, sel)
		}
	}
	return res
}

// Focused returns the kind of the focused field.
func (m Model) Focused() FieldKind {
	if len(m.fields) == 0 {
		return ""
	}
	return m.fields[m.focus].Kind()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}
	styles := m.theme.Styles()
	indent := strings.Repeat(" ", fieldIndent)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := styles.Label
		if i == m.focus {
			label = styles.FocusedLabel
		}
		b.WriteString(label.Render(f.Kind().title()))
		b.WriteByte('\n')
		for _, line := range strings.Split(f.View(), "\n") {
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	status := m.status
	if age := snapshotAge(m.snapshot, m.now); age != "" && status == "" {
		status = age
	}
	b.WriteString(styles.Footer.Render(styles.MutedText.Render(status)))
	b.WriteByte('\n')
	b.WriteString(styles.Footer.Render(m.renderHelp()))
	return b.String()
}

type tickMsg time.Time

type snapshotMsg state.Snapshot

type prefsSavedMsg struct{ err error }

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// Run starts the Bubble Tea program and blocks until the form is submitted
// or abandoned.
func Run(opts Options) (Result, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("run ui: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return Result{}, errors.New("run ui: unexpected final model")
	}
	return fm.Result(), nil
}
