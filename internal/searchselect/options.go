package searchselect

import (
	"context"
	"time"

	"pkt.systems/pslog"
)

const (
	DefaultMinQueryLen = 2
	DefaultDebounce    = 300 * time.Millisecond
	DefaultBlurGrace   = 200 * time.Millisecond
	DefaultWidth       = 40
	DefaultMaxRows     = 8
)

// Options configure a Model. Zero values fall back to the defaults above,
// except HighlightFirst and SoleMatchCommit which are plain switches.
type Options[T Item] struct {
	Source      Source[T]
	Prompt      string
	Placeholder string
	Width       int
	MaxRows     int
	MinQueryLen int
	Debounce    time.Duration
	BlurGrace   time.Duration

	// HighlightFirst moves the highlight to the first row whenever a
	// non-empty result set arrives. When false the highlight stays at -1
	// until an arrow key is pressed.
	HighlightFirst bool
	// SoleMatchCommit lets Enter commit the only row of a result set when
	// nothing is highlighted.
	SoleMatchCommit bool

	Capture *MouseCapture
	Logger  pslog.Logger
	Keys    *KeyMap
	Styles  *Styles
	// Context is the parent of every search request. Defaults to
	// context.Background.
	Context context.Context
}

func (o Options[T]) withDefaults() Options[T] {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MinQueryLen <= 0 {
		o.MinQueryLen = DefaultMinQueryLen
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.BlurGrace <= 0 {
		o.BlurGrace = DefaultBlurGrace
	}
	if o.Prompt == "" {
		o.Prompt = "> "
	}
	if o.Logger == nil {
		o.Logger = pslog.NoopLogger()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	return o
}
