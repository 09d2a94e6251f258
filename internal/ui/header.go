package ui

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/state"
)

// renderHeader draws the title bar with backend health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)
	sep := bg.spaces(2)

	parts := []string{bg.render("shulpick", styles.Logo)}
	if m.title != "" {
		parts = append(parts, bg.render(m.title, styles.Text))
	}
	parts = append(parts, m.healthParts(styles, bg)...)

	width := m.width
	if width <= 0 {
		width = lipgloss.Width(strings.Join(parts, sep)) + 2
	}
	return styles.Header.Width(width).Render(strings.Join(parts, sep))
}

func (m Model) healthParts(styles Styles, bg bgStyle) []string {
	snap := m.snapshot
	var parts []string
	if snap.Backend != "" {
		parts = append(parts, bg.render(truncateMiddle(snap.Backend, 40), styles.MutedText))
	}
	switch {
	case !snap.Checked:
		parts = append(parts, bg.render("connecting…", styles.WarningText))
	case snap.Reachable:
		parts = append(parts,
			bg.render("online", styles.SuccessText),
			bg.render(formatLatency(snap.Latency), styles.FaintText),
		)
	default:
		label := classifyConnectionError(snap.LastError)
		if !snap.IsOffline() {
			label = "DEGRADED"
		}
		parts = append(parts, bg.render(label, styles.DangerText))
		if !snap.LastSuccess.IsZero() {
			parts = append(parts, bg.render("last seen "+humanize.Time(snap.LastSuccess), styles.MutedText))
		}
	}
	return parts
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return d.Round(time.Millisecond).String()
}

// classifyConnectionError returns a short label for a failed probe.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "TIMEOUT"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// snapshotAge reports how stale the header is, for the footer.
func snapshotAge(snap state.Snapshot, now time.Time) string {
	if snap.LastChecked.IsZero() {
		return ""
	}
	return "checked " + humanize.RelTime(snap.LastChecked, now, "ago", "from now")
}
