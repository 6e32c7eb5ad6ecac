package engine

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUserInterrupt = errors.New("user interrupt")
	ErrBrokenPipe    = errors.New("broken pipe")
)

// Interrupter hands each command a fresh context and cancels the running one
// on operator request. Starting a command discards any earlier interrupt.
type Interrupter struct {
	mu     sync.Mutex
	cancel context.CancelCauseFunc
}

// Begin returns the context for the next command. done must be called when
// the command finishes.
func (i *Interrupter) Begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()
	return ctx, func() {
		i.mu.Lock()
		i.cancel = nil
		i.mu.Unlock()
		cancel(nil)
	}
}

// Interrupt cancels the running command with cause. It reports whether a
// command was running.
func (i *Interrupter) Interrupt(cause error) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel == nil {
		return false
	}
	i.cancel(cause)
	return true
}
