// Package searchselect implements a debounced, race-safe, keyboard and mouse
// navigable search-select field for Bubble Tea programs.
//
// # Overview
//
// A Model wraps a bubbles textinput and a dropdown of results fetched from a
// Source. Each instance is split into three cooperating parts:
//
//   - Debouncer: every edit restarts a quiet-period timer; only the timer that
//     survives the burst issues a fetch, always with the settled query.
//   - Fetcher: every issued fetch gets a new generation; a response is applied
//     only while its generation is still the newest one issued.
//   - Selection controller: open/closed state, highlight index, commit and
//     dismiss rules.
//
// # Message Flow
//
//	keystroke ─→ onQueryChange ─→ tea.Tick(Debounce) ─→ debounceMsg{tag}
//	                                                         │
//	                        tag still current? ──────────────┘
//	                                │
//	                   generation++ ─→ Source.Search ─→ resultMsg{gen}
//	                                                         │
//	                 gen still current? apply : drop ───────┘
//
// All state changes happen inside Update, which Bubble Tea calls from a single
// goroutine. Timers and network calls run as tea.Cmds and re-enter Update as
// messages carrying the owning instance id, so several pickers can share one
// program without seeing each other's traffic.
//
// # States
//
//	Closed ──(arrow key)──────────────→ OpenEmpty
//	Closed ──(focus, rows present)────→ OpenWithResults
//	Open*  ──(results arrive)─────────→ OpenWithResults | OpenEmpty
//	Open*  ──(enter / row press)──────→ Closed + ChangedMsg
//	Open*  ──(esc / outside press)────→ Closed
//	Open*  ──(blur + BlurGrace)───────→ Closed
//
// The highlight index is -1 or a valid row index. It clamps at both ends and
// never wraps. Grouped results are highlighted and hit-tested over their
// flattened rows; group headers are rendered but cannot be selected.
//
// # Outside Clicks
//
// Terminal mouse reporting is process-wide. A shared MouseCapture reference
// counts the open dropdowns: the first open picker enables reporting and the
// last one to close (or be torn down with Close) disables it again.
//
// # Teardown
//
// Close cancels the in-flight request, invalidates pending timers, releases
// the mouse capture, and makes the model ignore every later message.
package searchselect
