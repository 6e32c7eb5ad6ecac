//go:build linux

package iomodel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/verify"
	"github.com/pranshuparmar/socktest/pkg/model"
)

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestUnixSysFlags(t *testing.T) {
	a, _ := socketpair(t)
	sys := OS()
	rec := &recorder{}

	require.NoError(t, setFlag(sys, rec, a, unix.O_NONBLOCK))
	flags, err := sys.GetFlags(a)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)

	require.NoError(t, clearFlag(sys, rec, a, unix.O_NONBLOCK))
	flags, err = sys.GetFlags(a)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.O_NONBLOCK)
	assert.Empty(t, rec.warned())
}

func TestUnixSysFlagErrorsAreReported(t *testing.T) {
	rec := &recorder{}
	err := setFlag(OS(), rec, -1, unix.O_NONBLOCK)
	assert.ErrorIs(t, err, unix.EBADF)
	assert.Len(t, rec.warned(), 1)
}

func TestUnixSysSelect(t *testing.T) {
	a, b := socketpair(t)
	sys := OS()

	r, err := sys.Select(a, model.ReadyForWrite, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count)
	assert.True(t, r.Has(model.ReadyForWrite))

	r, err = sys.Select(a, model.ReadyForRead, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, r.Count)

	_, err = unix.Write(b, []byte("x"))
	require.NoError(t, err)
	r, err = sys.Select(a, model.ReadyForRead, time.Second)
	require.NoError(t, err)
	assert.True(t, r.Has(model.ReadyForRead))
	assert.False(t, r.Has(model.ReadyForWrite))
}

func TestUnixSysSelectRejectsOutOfRange(t *testing.T) {
	_, err := OS().Select(fdSetSize, model.ReadyForRead, time.Millisecond)
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestSIGIONotifier(t *testing.T) {
	rec := &recorder{}
	n := NewSIGIONotifier(rec)
	defer n.Close()

	require.NoError(t, n.Install())
	n.Reset()
	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGIO))
	select {
	case <-n.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("no SIGIO delivered")
	}
	assert.True(t, n.Received())
	n.Reset()
	assert.False(t, n.Received())

	require.NoError(t, n.Restore())
	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGIO))
	assert.Eventually(t, func() bool { return len(rec.warned()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Error - Unexpected SIGIO signal.", rec.warned()[0])
	assert.False(t, n.Received())
}

func TestSignalModelWithSocketpair(t *testing.T) {
	a, b := socketpair(t)
	rec := &recorder{}
	n := NewSIGIONotifier(rec)
	defer n.Close()

	m, err := New(model.Signal, Deps{
		Sys:      OS(),
		Verifier: verify.New(0, rec),
		Report:   rec,
		Notifier: n,
		WaitStep: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		unix.Write(b, []byte("ping"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.PreCall(ctx, a, model.ReadyForRead))
	require.NoError(t, ctx.Err(), "timed out waiting for SIGIO")

	buf := make([]byte, 16)
	got, err := unix.Read(a, buf)
	assert.True(t, m.PostCall(ctx, a, model.ResultOf(got, err)))
	assert.Equal(t, "ping", string(buf[:got]))

	flags, err := OS().GetFlags(a)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.O_ASYNC)
}
