package searchselect

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// MouseCapture reference counts the pickers that need terminal mouse
// reporting. Mouse reporting is enabled when the first holder acquires it and
// disabled when the last holder releases it.
//
// A nil *MouseCapture is valid and never changes the terminal mode, for hosts
// that keep mouse reporting on for their whole lifetime.
type MouseCapture struct {
	mu      sync.Mutex
	holders map[int]struct{}
}

// NewMouseCapture returns an empty capture.
func NewMouseCapture() *MouseCapture {
	return &MouseCapture{holders: make(map[int]struct{})}
}

// Acquire registers owner. Acquiring twice is a no-op.
func (c *MouseCapture) Acquire(owner int) tea.Cmd {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.holders[owner]; ok {
		return nil
	}
	c.holders[owner] = struct{}{}
	if len(c.holders) == 1 {
		return tea.EnableMouseCellMotion
	}
	return nil
}

// Release unregisters owner. Releasing an owner that does not hold the
// capture is a no-op.
func (c *MouseCapture) Release(owner int) tea.Cmd {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.holders[owner]; !ok {
		return nil
	}
	delete(c.holders, owner)
	if len(c.holders) == 0 {
		return tea.DisableMouse
	}
	return nil
}

// Holders returns the number of registered owners.
func (c *MouseCapture) Holders() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.holders)
}

// Held reports whether owner currently holds the capture.
func (c *MouseCapture) Held(owner int) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.holders[owner]
	return ok
}
