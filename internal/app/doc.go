// Package app is the composition root for shulpick.
//
// It resolves configuration (file, environment, then command-line
// overrides), opens the log file, builds the backend client and hands them
// to the UI or the non-interactive lookup.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML + SHULPICK_* env
//	       ├─────> NewLogger()          pslog to the log file
//	       ├─────> prefs.Load()         theme, remembered picker
//	       ├─────> backend.NewClient()  HTTP search client
//	       ├─────> StartPoller()        health probes into state.Store
//	       └─────> ui.Run()             form (blocks), returns selections
//
//	Lookup() shares the setup and prints one search as a table instead.
//
// # Polling
//
// The poller pings the health endpoint every interval (default 5s). Each
// consecutive failure doubles the wait, capped at 30s; the first success
// resets it. Probe results land in state.Store, which the UI header reads on
// its own tick, so a slow backend never stalls rendering.
//
// # Errors
//
// Configuration and client construction errors are returned from Run and
// Lookup. Probe failures are recorded and logged, never returned. A broken
// prefs file is logged and defaults are used.
package app
