// Package state shares backend health between the background poller and the
// TUI.
//
// The poller calls Record after every probe; the UI calls Snapshot on each
// tick. Both sides go through a sync.RWMutex and the UI only ever sees copies,
// so a probe that finishes mid-render cannot tear the header.
//
// A failed probe keeps LastSuccess and Latency from the last good probe and
// increments ConsecutiveFailures. IsOffline turns true after two failures in
// a row, which keeps a single dropped probe from flashing the header red.
package state
