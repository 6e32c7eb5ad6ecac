//go:build linux

package proc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const tcpSample = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 41234 1 0000000000000000 100 0 0 10 0
   1: 0100007F:1F90 0100007F:C350 01 00000000:00000000 00:00000000 00000000     0        0 41240 1 0000000000000000 20 4 30 10 -1
   2: 0100007F:C350 0100007F:1F90 08 00000000:00000000 00:00000000 00000000     0        0 41241 1 0000000000000000 20 4 30 10 -1
`

const tcp6Sample = `  sl  local_address                         remote_address                        st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000000000000000000001000000:0016 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 5555 1 0000000000000000 100 0 0 10 0
`

func TestScanTableListen(t *testing.T) {
	info, err := scanTable(strings.NewReader(tcpSample), table{"tcp", "TCP", false}, 41234)
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, "LISTEN", info.State)
	assert.Equal(t, 8080, info.Port)
	assert.Equal(t, "127.0.0.1:8080", info.LocalAddr)
	assert.Empty(t, info.RemoteAddr)
	assert.NotEmpty(t, info.Explanation)
}

func TestScanTableEstablishedAndCloseWait(t *testing.T) {
	info, err := scanTable(strings.NewReader(tcpSample), table{"tcp", "TCP", false}, 41240)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "ESTABLISHED", info.State)
	assert.Equal(t, "127.0.0.1:50000", info.RemoteAddr)

	info, err = scanTable(strings.NewReader(tcpSample), table{"tcp", "TCP", false}, 41241)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "CLOSE_WAIT", info.State)
	assert.NotEmpty(t, info.Workaround)
}

func TestScanTableIPv6(t *testing.T) {
	info, err := scanTable(strings.NewReader(tcp6Sample), table{"tcp6", "TCP6", true}, 5555)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "[::1]:22", info.LocalAddr)
	assert.Equal(t, "TCP6", info.Protocol)
}

func TestScanTableMissingInode(t *testing.T) {
	info, err := scanTable(strings.NewReader(tcpSample), table{"tcp", "TCP", false}, 1)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestScanTableDatagramState(t *testing.T) {
	const udp = `   sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops
  100: 00000000:0044 00000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 777 2 0000000000000000 0
`
	info, err := scanTable(strings.NewReader(udp), table{"udp", "UDP", false}, 777)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "UNCONNECTED", info.State)
	assert.Equal(t, "0.0.0.0:68", info.LocalAddr)
}

func TestLookupInodeListeningSocket(t *testing.T) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	require.NoError(t, unix.Bind(fd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}))
	require.NoError(t, unix.Listen(fd, 1))

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(fd, &st))

	info, err := LookupInode(st.Ino)
	if err != nil {
		t.Skipf("socket tables unavailable: %v", err)
	}
	assert.Equal(t, "LISTEN", info.State)
	assert.Equal(t, "TCP", info.Protocol)
	assert.True(t, strings.HasPrefix(info.LocalAddr, "127.0.0.1:"))
}
