// Package ui is the shulpick terminal form, built on Bubble Tea.
//
// # Layout
//
//	┌──────────────────────────────────────────────┐
//	│ shulpick  http://127.0.0.1:8080  online 4ms  │  header, backend health
//	└──────────────────────────────────────────────┘
//	Member
//	  › sar                                          searchselect field
//	  › Sarah Cohen  sarah.cohen@example.org         dropdown, pushes
//	    Sally Rosen  sally.rosen@example.org         later fields down
//	Membership tier
//	  ›
//	Search everything
//	  ›
//	Member: Sarah Cohen (7)                          last change
//	↓ next • enter select • tab next field • …       bubbles/help
//
// # Fields
//
// Each field wraps a searchselect.Model over a backend source:
//
//   - member: flat list from the member search endpoint
//   - tier: flat list from the tier search endpoint
//   - search: keyed groups from the global search endpoint; a lone row is
//     never committed by Enter alone
//
// Keys go to the focused field only. Timer and result messages are offered
// to every field; each ignores messages addressed to another picker. Mouse
// events also go to every field so an open dropdown closes when the press
// lands outside it. The form records where each input line is drawn
// (layout) so that hit-testing matches View.
//
// # Keys
//
//	tab / shift+tab   move focus (the field left behind keeps its dropdown
//	                  open for the blur grace period)
//	ctrl+s            submit and return the selections
//	ctrl+c            abandon
//	ctrl+t            cycle theme (saved to prefs)
//	f1                toggle full help
//
// Picker keys (arrows, enter, esc, ctrl+x) are documented in searchselect.
//
// # Health
//
// The header reads state.Store on every poll tick. The store is fed by the
// app package's poller; the UI never probes the backend itself.
package ui
