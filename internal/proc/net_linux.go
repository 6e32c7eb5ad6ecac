//go:build linux

package proc

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// ErrNotFound is returned when no socket table lists the requested inode.
var ErrNotFound = errors.New("socket not found in kernel socket tables")

// Root is where the socket tables are read from.
var Root = "/proc/net"

type table struct {
	file  string
	proto string
	ipv6  bool
}

var tables = []table{
	{"tcp", "TCP", false},
	{"tcp6", "TCP6", true},
	{"udp", "UDP", false},
	{"udp6", "UDP6", true},
	{"raw", "RAW", false},
	{"raw6", "RAW6", true},
}

// LookupInode finds the kernel socket-table entry for a socket inode.
func LookupInode(inode uint64) (*model.SocketInfo, error) {
	for _, t := range tables {
		f, err := os.Open(filepath.Join(Root, t.file))
		if err != nil {
			continue
		}
		info, err := scanTable(f, t, inode)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.file, err)
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, ErrNotFound
}

func scanTable(r io.Reader, t table, inode uint64) (*model.SocketInfo, error) {
	want := strconv.FormatUint(inode, 10)
	scanner := bufio.NewScanner(r)
	scanner.Scan() // skip header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 || fields[9] != want {
			continue
		}

		localIP, localPort := parseAddr(fields[1], t.ipv6)
		remoteIP, remotePort := parseAddr(fields[2], t.ipv6)
		stateVal, _ := strconv.ParseInt(fields[3], 16, 64)

		info := &model.SocketInfo{
			Inode:     inode,
			Port:      localPort,
			LocalAddr: net.JoinHostPort(localIP, strconv.Itoa(localPort)),
			Protocol:  t.proto,
		}
		if remotePort != 0 {
			info.RemoteAddr = net.JoinHostPort(remoteIP, strconv.Itoa(remotePort))
		}
		if strings.HasPrefix(t.proto, "TCP") {
			info.State = mapTCPState(int(stateVal))
			addStateExplanation(info)
		} else {
			info.State = mapDatagramState(int(stateVal))
		}
		return info, nil
	}
	return nil, scanner.Err()
}

func parseAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	port, _ := strconv.ParseInt(parts[1], 16, 32)

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		// Four little-endian 32-bit words.
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	return net.IPv4(b[3], b[2], b[1], b[0]).String(), int(port)
}
