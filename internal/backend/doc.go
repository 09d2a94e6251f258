// Package backend provides the HTTP client for the congregation backend's
// search endpoints.
//
// # Overview
//
// Every search endpoint follows one contract:
//
//	GET <endpoint>?q=<urlencoded query>&limit=<n>
//
// Single-entity endpoints (members, tiers) answer with a JSON array. The
// global endpoint answers with an object of named arrays:
//
//	{"members": [...], "students": [...], "households": [...]}
//
// Group order is the order the server wrote the keys in. It is preserved with
// an ordered map rather than Go's unordered map.
//
// Every result object must carry an "id" (string or number). A result without
// one makes the whole response malformed.
//
// # Errors
//
//   - Transport failures are wrapped as "execute request: ...".
//   - Non-2xx answers return *StatusError.
//   - Bodies that do not match the expected shape are wrapped as
//     "decode response: ...".
//
// Callers inside the TUI fold all of these into an empty result set.
//
// # Request Collapsing
//
// Identical searches issued while one is already in flight share a single
// HTTP round trip through golang.org/x/sync/singleflight. Each caller still
// honours its own context: a cancelled caller returns immediately while the
// shared request finishes for the others, bounded by the client timeout.
package backend
