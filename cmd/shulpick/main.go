package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env next to the binary may carry SHULPICK_API_TOKEN and friends.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand(os.Stdout)
	return exitCode(cmd.ExecuteContext(ctx), os.Stderr)
}

// exitCode maps a command error to the process status. Interrupts and an
// abandoned picker exit 130 quietly, like a shell interrupt.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), errors.Is(err, errAborted):
		return 130
	default:
		fmt.Fprintf(stderr, "shulpick: %v\n", err)
		return 1
	}
}
