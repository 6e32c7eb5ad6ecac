//go:build linux

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/iomodel"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/pkg/model"
)

func TestAnalyzeSlots(t *testing.T) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)
	require.NoError(t, unix.Bind(fd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}))
	require.NoError(t, unix.Listen(fd, 1))
	require.NoError(t, unix.SetNonblock(fd, true))

	reg := registry.New()
	i, err := reg.Allocate()
	require.NoError(t, err)
	require.NoError(t, reg.Bind(i, model.Slot{Handle: fd, Domain: unix.AF_INET, Type: unix.SOCK_STREAM}))
	require.NoError(t, reg.Select(i))

	reports := AnalyzeSlots(AnalyzeConfig{Registry: reg, Flags: iomodel.OS(), Kernel: true})
	require.Len(t, reports, registry.Capacity)

	r := reports[0]
	assert.True(t, r.Current)
	assert.Equal(t, "inet", r.Domain)
	assert.Equal(t, "stream", r.Type)
	assert.True(t, r.NonBlocking)
	assert.False(t, r.Async)
	assert.Contains(t, r.LocalAddr, "127.0.0.1:")
	if r.Socket != nil {
		assert.Equal(t, "LISTEN", r.Socket.State)
	}

	assert.Equal(t, model.UnusedHandle, reports[1].Handle)
	assert.Empty(t, reports[1].Domain)
}

func TestAnalyzeCurrentWithoutSocket(t *testing.T) {
	_, err := AnalyzeCurrent(AnalyzeConfig{Registry: registry.New(), Flags: iomodel.OS()})
	assert.ErrorIs(t, err, registry.ErrSlotNotOpen)
}
