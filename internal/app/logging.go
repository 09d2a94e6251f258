package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

const logEnvPrefix = "SHULPICK_LOG_"

// NewLogger returns a structured logger appending to path. The TUI owns the
// terminal, so logs never go to stderr. SHULPICK_LOG_* variables override the
// defaults; level, when set, wins over both. An empty path discards logs.
func NewLogger(ctx context.Context, path, level string) (pslog.Logger, func() error, error) {
	noop := func() error { return nil }
	path = strings.TrimSpace(path)
	if path == "" {
		return pslog.NoopLogger(), noop, nil
	}

	var lvl pslog.Level
	level = strings.TrimSpace(level)
	if level != "" {
		parsed, ok := pslog.ParseLevel(level)
		if !ok {
			return nil, noop, fmt.Errorf("log level %q is not valid", level)
		}
		lvl = parsed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, noop, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}

	logger := pslog.LoggerFromEnv(ctx,
		pslog.WithEnvPrefix(logEnvPrefix),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(f),
	).With("app", "shulpick")
	if level != "" {
		logger = logger.LogLevel(lvl)
	}
	return logger, f.Close, nil
}
