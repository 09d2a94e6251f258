package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parkerfly38/shulpick/internal/searchselect"
)

// FieldKind names one of the pickers the form can show.
type FieldKind string

const (
	FieldMember FieldKind = "member"
	FieldTier   FieldKind = "tier"
	FieldSearch FieldKind = "search"
)

// FieldKinds lists every known field in form order.
func FieldKinds() []FieldKind {
	return []FieldKind{FieldMember, FieldTier, FieldSearch}
}

// ParseFieldKind accepts a field name, case-insensitively.
func ParseFieldKind(s string) (FieldKind, error) {
	k := FieldKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FieldKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown field %q (want member, tier or search)", s)
}

func (k FieldKind) title() string {
	switch k {
	case FieldMember:
		return "Member"
	case FieldTier:
		return "Membership tier"
	case FieldSearch:
		return "Search everything"
	default:
		return titleCase(string(k))
	}
}

// Selection is the committed value of one field.
type Selection struct {
	Field FieldKind
	ID    string
	Label string
}

// field hides the item type of a picker from the form.
type field interface {
	Kind() FieldKind
	PickerID() int
	Update(tea.Msg) (field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur() tea.Cmd
	Close() tea.Cmd
	Clear() tea.Cmd
	Open() bool
	Selection() (Selection, bool)
	SetOrigin(x, y int)
	Contains(x, y int) bool
	SetStyles(searchselect.Styles)
	KeyMap() searchselect.KeyMap
}

type picker[T searchselect.Item] struct {
	kind  FieldKind
	model searchselect.Model[T]
}

func newPicker[T searchselect.Item](kind FieldKind, opts searchselect.Options[T]) *picker[T] {
	return &picker[T]{kind: kind, model: searchselect.New(opts)}
}

func (p *picker[T]) Kind() FieldKind { return p.kind }
func (p *picker[T]) PickerID() int   { return p.model.ID() }
func (p *picker[T]) View() string    { return p.model.View() }
func (p *picker[T]) Focus() tea.Cmd  { return p.model.Focus() }
func (p *picker[T]) Blur() tea.Cmd   { return p.model.Blur() }
func (p *picker[T]) Close() tea.Cmd  { return p.model.Close() }
func (p *picker[T]) Clear() tea.Cmd  { return p.model.Clear() }

func (p *picker[T]) Update(msg tea.Msg) (field, tea.Cmd) {
	var cmd tea.Cmd
	p.model, cmd = p.model.Update(msg)
	return p, cmd
}

func (p *picker[T]) Open() bool {
	return p.model.State() != searchselect.Closed
}

func (p *picker[T]) Selection() (Selection, bool) {
	item, ok := p.model.Selected()
	if !ok {
		return Selection{}, false
	}
	return Selection{Field: p.kind, ID: item.ItemID(), Label: item.ItemLabel()}, true
}

func (p *picker[T]) SetOrigin(x, y int)              { p.model.SetOrigin(x, y) }
func (p *picker[T]) Contains(x, y int) bool          { return p.model.Contains(x, y) }
func (p *picker[T]) SetStyles(s searchselect.Styles) { p.model.SetStyles(s) }
func (p *picker[T]) KeyMap() searchselect.KeyMap     { return p.model.KeyMap() }
