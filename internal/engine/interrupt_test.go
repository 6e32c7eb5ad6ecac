package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterrupterCancelsRunningCommand(t *testing.T) {
	var in Interrupter
	ctx, done := in.Begin(context.Background())
	defer done()

	assert.True(t, in.Interrupt(ErrUserInterrupt))
	assert.ErrorIs(t, context.Cause(ctx), ErrUserInterrupt)
}

func TestInterrupterIdle(t *testing.T) {
	var in Interrupter
	assert.False(t, in.Interrupt(ErrUserInterrupt))

	_, done := in.Begin(context.Background())
	done()
	assert.False(t, in.Interrupt(ErrBrokenPipe))
}

func TestInterrupterResetsPerCommand(t *testing.T) {
	var in Interrupter
	first, done := in.Begin(context.Background())
	in.Interrupt(ErrUserInterrupt)
	done()

	second, done := in.Begin(context.Background())
	defer done()
	assert.Error(t, first.Err())
	assert.NoError(t, second.Err())
}
