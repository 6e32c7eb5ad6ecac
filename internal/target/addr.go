package target

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

var (
	ErrNoAddress   = errors.New("no address found")
	ErrUnsupported = errors.New("address family not supported")
)

// Resolver maps host names to socket addresses for one address family.
type Resolver struct {
	Lookup func(ctx context.Context, network, host string) ([]net.IP, error)
}

// NewResolver uses the system resolver.
func NewResolver() *Resolver {
	return &Resolver{Lookup: net.DefaultResolver.LookupIP}
}

// Resolve returns the first address of host in the given family, with port
// set. An empty host yields the family's wildcard address.
func (r *Resolver) Resolve(ctx context.Context, domain int, host string, port int) (unix.Sockaddr, error) {
	if port < 0 || port > 0xffff {
		return nil, fmt.Errorf("port %d out of range", port)
	}
	if host == "" {
		return Wildcard(domain, port)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return fromAddr(domain, addr, port)
	}

	network, err := lookupNetwork(domain)
	if err != nil {
		return nil, err
	}
	ips, err := r.Lookup(ctx, network, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, ip := range ips {
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		if sa, err := fromAddr(domain, addr.Unmap(), port); err == nil {
			return sa, nil
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrNoAddress, host)
}

// Loopback returns the loopback address of domain.
func Loopback(domain int, port int) (unix.Sockaddr, error) {
	switch domain {
	case unix.AF_INET:
		return &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}, nil
	case unix.AF_INET6:
		return &unix.SockaddrInet6{Port: port, Addr: netip.IPv6Loopback().As16()}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupported, domain)
}

// Wildcard returns the any-address of domain.
func Wildcard(domain int, port int) (unix.Sockaddr, error) {
	switch domain {
	case unix.AF_INET:
		return &unix.SockaddrInet4{Port: port}, nil
	case unix.AF_INET6:
		return &unix.SockaddrInet6{Port: port}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupported, domain)
}

// Group resolves a multicast group address.
func (r *Resolver) Group(ctx context.Context, domain int, host string) (netip.Addr, error) {
	sa, err := r.Resolve(ctx, domain, host, 0)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, _ := AddrPort(sa)
	if !addr.IsMulticast() {
		return netip.Addr{}, fmt.Errorf("%s is not a multicast address", addr)
	}
	return addr, nil
}

func lookupNetwork(domain int) (string, error) {
	switch domain {
	case unix.AF_INET:
		return "ip4", nil
	case unix.AF_INET6:
		return "ip6", nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupported, domain)
}

func fromAddr(domain int, addr netip.Addr, port int) (unix.Sockaddr, error) {
	switch {
	case domain == unix.AF_INET && addr.Is4():
		return &unix.SockaddrInet4{Port: port, Addr: addr.As4()}, nil
	case domain == unix.AF_INET6 && addr.Is6() && !addr.Is4In6():
		sa := &unix.SockaddrInet6{Port: port, Addr: addr.As16()}
		if zone := addr.Zone(); zone != "" {
			ifi, err := net.InterfaceByName(zone)
			if err != nil {
				return nil, fmt.Errorf("zone %s: %w", zone, err)
			}
			sa.ZoneId = uint32(ifi.Index)
		}
		return sa, nil
	}
	return nil, fmt.Errorf("%w: %s in domain %d", ErrUnsupported, addr, domain)
}

// AddrPort extracts the IP address and port of an inet or inet6 socket
// address. Other families yield the zero Addr.
func AddrPort(sa unix.Sockaddr) (netip.Addr, int) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(a.Addr), a.Port
	case *unix.SockaddrInet6:
		addr := netip.AddrFrom16(a.Addr)
		if a.ZoneId != 0 {
			addr = addr.WithZone(strconv.Itoa(int(a.ZoneId)))
		}
		return addr, a.Port
	}
	return netip.Addr{}, 0
}

// SockaddrLen is the size of the kernel structure behind sa.
func SockaddrLen(sa unix.Sockaddr) int {
	switch sa.(type) {
	case *unix.SockaddrInet4:
		return unix.SizeofSockaddrInet4
	case *unix.SockaddrInet6:
		return unix.SizeofSockaddrInet6
	case *unix.SockaddrUnix:
		return unix.SizeofSockaddrUnix
	}
	return 0
}

// FormatSockaddr renders sa as host:port.
func FormatSockaddr(sa unix.Sockaddr) string {
	if u, ok := sa.(*unix.SockaddrUnix); ok {
		if u.Name == "" {
			return "(unnamed)"
		}
		return u.Name
	}
	addr, port := AddrPort(sa)
	if !addr.IsValid() {
		return "(unknown family)"
	}
	return netip.AddrPortFrom(addr, uint16(port)).String()
}
