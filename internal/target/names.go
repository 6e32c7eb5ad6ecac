package target

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Names maps lower-case symbolic names to integer values.
type Names map[string]int

var (
	Domains = Names{
		"inet":  unix.AF_INET,
		"inet6": unix.AF_INET6,
	}
	Types = Names{
		"stream":    unix.SOCK_STREAM,
		"datagram":  unix.SOCK_DGRAM,
		"dgram":     unix.SOCK_DGRAM,
		"raw":       unix.SOCK_RAW,
		"seqpacket": unix.SOCK_SEQPACKET,
	}
	ShutdownHow = Names{
		"shut_rd":   unix.SHUT_RD,
		"shut_wr":   unix.SHUT_WR,
		"shut_rdwr": unix.SHUT_RDWR,
	}
	MsgFlags = Names{
		"oob":      unix.MSG_OOB,
		"peek":     unix.MSG_PEEK,
		"dontwait": unix.MSG_DONTWAIT,
		"waitall":  unix.MSG_WAITALL,
	}
	Levels = Names{
		"sol_socket":   unix.SOL_SOCKET,
		"ipproto_ip":   unix.IPPROTO_IP,
		"ipproto_ipv6": unix.IPPROTO_IPV6,
		"ipproto_tcp":  unix.IPPROTO_TCP,
		"ipproto_udp":  unix.IPPROTO_UDP,
	}
	Options = Names{
		"so_reuseaddr":  unix.SO_REUSEADDR,
		"so_reuseport":  unix.SO_REUSEPORT,
		"so_keepalive":  unix.SO_KEEPALIVE,
		"so_broadcast":  unix.SO_BROADCAST,
		"so_oobinline":  unix.SO_OOBINLINE,
		"so_sndbuf":     unix.SO_SNDBUF,
		"so_rcvbuf":     unix.SO_RCVBUF,
		"so_rcvlowat":   unix.SO_RCVLOWAT,
		"so_sndlowat":   unix.SO_SNDLOWAT,
		"so_error":      unix.SO_ERROR,
		"so_type":       unix.SO_TYPE,
		"tcp_nodelay":   unix.TCP_NODELAY,
		"ipv6_v6only":   unix.IPV6_V6ONLY,
		"ip_ttl":        unix.IP_TTL,
	}
)

// ParseInt parses a number the way C's %i conversion does: decimal,
// 0x-prefixed hex or 0-prefixed octal, with an optional sign.
func ParseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int(v), nil
}

// Value looks token up by name, falling back to a numeric parse.
func (n Names) Value(token string) (int, error) {
	if v, ok := n[strings.ToLower(token)]; ok {
		return v, nil
	}
	if v, err := ParseInt(token); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("unrecognized value %q (want %s or a number)", token, strings.Join(n.List(), ", "))
}

// Name returns the first name (in sorted order) bound to v, or v in decimal.
func (n Names) Name(v int) string {
	for _, name := range n.List() {
		if n[name] == v {
			return name
		}
	}
	return strconv.Itoa(v)
}

// List returns the names in sorted order.
func (n Names) List() []string {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
