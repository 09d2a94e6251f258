// Package fixtures serves a sample congregation over the same HTTP search
// contract the picker consumes.
//
// It backs the "fixtures" subcommand and the end-to-end tests: member and
// tier searches answer flat arrays, the global search answers keyed groups in
// a fixed order, and optional latency, jitter and injected failures let a
// developer watch debouncing and stale-response handling against a slow
// backend. Request counts and durations are exported on /metrics.
package fixtures
