//go:build linux

package app

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/engine"
)

type printer interface {
	Printf(format string, args ...any)
}

// forwardSignals turns SIGINT, SIGTSTP and SIGPIPE into interrupts of the
// running command until ctx ends.
func forwardSignals(ctx context.Context, out printer, intr *engine.Interrupter) error {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, unix.SIGINT, unix.SIGTSTP, unix.SIGPIPE)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigs:
			handleSignal(sig, out, intr)
		}
	}
}

func handleSignal(sig os.Signal, out printer, intr *engine.Interrupter) {
	if sig == unix.SIGPIPE {
		out.Printf("Broken pipe signal received.")
		intr.Interrupt(engine.ErrBrokenPipe)
		return
	}
	out.Printf("User interrupt received.")
	intr.Interrupt(engine.ErrUserInterrupt)
}
