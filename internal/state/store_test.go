package state

import (
	"errors"
	"testing"
	"time"
)

func TestStore_RecordSuccess(t *testing.T) {
	var s Store
	s.SetBackend("http://127.0.0.1:8080")

	before := time.Now()
	s.Record(12*time.Millisecond, nil)

	snap := s.Snapshot()
	if !snap.Checked || !snap.Reachable {
		t.Fatalf("snapshot = %+v, want checked and reachable", snap)
	}
	if snap.Backend != "http://127.0.0.1:8080" {
		t.Fatalf("Backend = %q", snap.Backend)
	}
	if snap.Latency != 12*time.Millisecond {
		t.Fatalf("Latency = %v, want 12ms", snap.Latency)
	}
	if snap.LastChecked.Before(before) || snap.LastSuccess.Before(before) {
		t.Fatalf("timestamps not updated: %+v", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_FailureKeepsLastSuccess(t *testing.T) {
	var s Store
	s.Record(5*time.Millisecond, nil)
	prev := s.Snapshot()

	origErr := errors.New("connection refused")
	s.Record(0, origErr)

	snap := s.Snapshot()
	if snap.Reachable {
		t.Fatalf("Reachable = true after failure")
	}
	if !snap.LastSuccess.Equal(prev.LastSuccess) || snap.Latency != prev.Latency {
		t.Fatalf("last success changed on error: got %+v want %+v", snap, prev)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapping %v", snap.LastError, origErr)
	}
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("failures = %d offline = %v, want 1/false", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Record(0, origErr)
	if !s.Snapshot().IsOffline() {
		t.Fatalf("IsOffline = false after two failures")
	}

	s.Record(time.Millisecond, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success did not reset failures: %+v", snap)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 200 {
			if i%3 == 0 {
				s.Record(0, errors.New("x"))
			} else {
				s.Record(time.Millisecond, nil)
			}
		}
	}()
	for range 200 {
		_ = s.Snapshot()
	}
	<-done
}
