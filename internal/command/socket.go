//go:build linux

package command

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/target"
	"github.com/pranshuparmar/socktest/pkg/model"
)

func doSocket(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var domainName, typeName, protoName string
	fs, err := parseFlags("socket", inv.args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&domainName, "domain", "d", "inet6", "")
		fs.StringVarP(&typeName, "type", "t", "stream", "")
		fs.StringVarP(&protoName, "protocol", "p", "0", "")
	})
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}

	domain, err := target.Domains.Value(domainName)
	if err != nil {
		return failf("%s is not a recognized option value.", domainName)
	}
	typ, err := target.Types.Value(typeName)
	if err != nil {
		return failf("%s is not a recognized option value.", typeName)
	}
	proto, err := target.ParseInt(protoName)
	if err != nil {
		return failf("%s is not a valid value.", protoName)
	}

	idx, err := d.reg.Allocate()
	if err != nil {
		return err
	}
	fd, err := unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		return apiError("socket", err)
	}
	if err := d.reg.Bind(idx, model.Slot{Handle: fd, Domain: domain, Type: typ, Protocol: proto}); err != nil {
		unix.Close(fd)
		return err
	}
	if err := d.reg.Select(idx); err != nil {
		return err
	}
	d.out.Verbosef("Socket %d opened (fd %d).", idx, fd)
	return nil
}

// address resolves host and port for the slot's domain. An empty host
// yields fallback's address.
func (d *Dispatcher) address(ctx context.Context, slot model.Slot, host, port string, fallback func(int, int) (unix.Sockaddr, error)) (unix.Sockaddr, error) {
	p, err := parsePort(port)
	if err != nil {
		return nil, err
	}
	if host == "" {
		sa, err := fallback(slot.Domain, p)
		if err != nil {
			return nil, failf("Error - no default address:  %v.", err)
		}
		return sa, nil
	}
	sa, err := d.resolver.Resolve(ctx, slot.Domain, host, p)
	if err != nil {
		return nil, failf("Error - %s is not a valid address:  %v.", host, err)
	}
	return sa, nil
}

func portAndHost(args []string) (port, host string, err error) {
	switch len(args) {
	case 1:
		return args[0], "", nil
	case 2:
		return args[0], args[1], nil
	}
	return "", "", usagef("")
}

func doBind(ctx context.Context, d *Dispatcher, inv *invocation) error {
	port, host, err := portAndHost(inv.args)
	if err != nil {
		return err
	}
	sa, err := d.address(ctx, inv.slot, host, port, target.Wildcard)
	if err != nil {
		return err
	}
	if err := unix.Bind(inv.slot.Handle, sa); err != nil {
		return apiError("bind", err)
	}
	return nil
}

func doConnect(ctx context.Context, d *Dispatcher, inv *invocation) error {
	port, host, err := portAndHost(inv.args)
	if err != nil {
		return err
	}
	sa, err := d.address(ctx, inv.slot, host, port, target.Loopback)
	if err != nil {
		return err
	}

	fd := inv.slot.Handle
	pending := false
	res, err := d.eng.Perform(ctx, model.ReadyForRead, func() model.RawResult {
		err := unix.Connect(fd, sa)
		switch {
		case errors.Is(err, unix.EINPROGRESS), errors.Is(err, unix.EALREADY):
			pending = true
		case pending && errors.Is(err, unix.EISCONN):
			// An earlier nonblocking attempt completed.
			err = nil
		}
		return model.ResultOf(0, err)
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "connect", Result: res}
	}
	return nil
}

func doListen(ctx context.Context, d *Dispatcher, inv *invocation) error {
	backlog := 1
	switch len(inv.args) {
	case 0:
	case 1:
		n, err := target.ParseInt(inv.args[0])
		if err != nil || n < 0 {
			return failf("Invalid backlog count.")
		}
		backlog = n
	default:
		return usagef("")
	}
	if err := unix.Listen(inv.slot.Handle, backlog); err != nil {
		return apiError("listen", err)
	}
	return nil
}

func doAccept(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	idx, err := d.reg.Allocate()
	if err != nil {
		return err
	}

	fd := inv.slot.Handle
	var peer unix.Sockaddr
	res, err := d.eng.Perform(ctx, model.ReadyForRead, func() model.RawResult {
		nfd, sa, err := unix.Accept4(fd, unix.SOCK_CLOEXEC)
		peer = sa
		return model.ResultOf(nfd, err)
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "accept", Result: res}
	}

	slot := inv.slot
	slot.Handle = res.Value
	if err := d.reg.Bind(idx, slot); err != nil {
		unix.Close(res.Value)
		return err
	}
	if err := d.reg.Select(idx); err != nil {
		return err
	}
	d.out.Verbosef("Connection from %s accepted as socket %d.", target.FormatSockaddr(peer), idx)
	return nil
}

func doClose(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	// The descriptor is gone after close even when it reports an error.
	err := unix.Close(inv.slot.Handle)
	if rerr := d.reg.Release(inv.index); rerr != nil {
		return rerr
	}
	if err != nil {
		return apiError("close", err)
	}
	return nil
}

func doShutdown(ctx context.Context, d *Dispatcher, inv *invocation) error {
	how := unix.SHUT_RDWR
	switch len(inv.args) {
	case 0:
	case 1:
		v, err := target.ShutdownHow.Value(inv.args[0])
		if err != nil {
			return failf("Invalid shutdown option value.")
		}
		how = v
	default:
		return usagef("")
	}
	if err := unix.Shutdown(inv.slot.Handle, how); err != nil {
		return apiError("shutdown", err)
	}
	return nil
}

func (d *Dispatcher) showName(sa unix.Sockaddr) {
	addr, port := target.AddrPort(sa)
	host := "(unknown)"
	if addr.IsValid() {
		host = addr.String()
	}
	d.out.Printf("Address = %s, port = %d, sockaddr length = %d.", host, port, target.SockaddrLen(sa))
}

func doGetsockname(ctx context.Context, d *Dispatcher, inv *invocation) error {
	sa, err := unix.Getsockname(inv.slot.Handle)
	if err != nil {
		return apiError("getsockname", err)
	}
	d.showName(sa)
	return nil
}

func doGetpeername(ctx context.Context, d *Dispatcher, inv *invocation) error {
	sa, err := unix.Getpeername(inv.slot.Handle)
	if err != nil {
		return apiError("getpeername", err)
	}
	d.showName(sa)
	return nil
}

func levelAndOption(args []string) (level, opt int, err error) {
	if level, err = target.Levels.Value(args[0]); err != nil {
		return 0, 0, failf("Invalid level value.")
	}
	if opt, err = target.Options.Value(args[1]); err != nil {
		return 0, 0, failf("Invalid opt value.")
	}
	return level, opt, nil
}

func doSetsockopt(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var value string
	fs, err := parseFlags("setsockopt", inv.args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&value, "int", "i", "", "")
	})
	if err != nil {
		return err
	}
	if fs.NArg() != 2 || !fs.Changed("int") {
		return usagef("")
	}
	level, opt, err := levelAndOption(fs.Args())
	if err != nil {
		return err
	}
	v, err := target.ParseInt(value)
	if err != nil {
		return failf("Invalid argument value.")
	}
	if err := unix.SetsockoptInt(inv.slot.Handle, level, opt, v); err != nil {
		return apiError("setsockopt", err)
	}
	return nil
}

func doGetsockopt(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var asInt bool
	fs, err := parseFlags("getsockopt", inv.args, func(fs *pflag.FlagSet) {
		fs.BoolVarP(&asInt, "int", "i", true, "")
	})
	if err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("")
	}
	level, opt, err := levelAndOption(fs.Args())
	if err != nil {
		return err
	}
	v, err := unix.GetsockoptInt(inv.slot.Handle, level, opt)
	if err != nil {
		return apiError("getsockopt", err)
	}
	d.out.Printf("Option value = %d, option length = %d.", v, 4)
	return nil
}

func doMultijoin(ctx context.Context, d *Dispatcher, inv *invocation) error {
	return d.membership(ctx, inv, true)
}

func doMultileave(ctx context.Context, d *Dispatcher, inv *invocation) error {
	return d.membership(ctx, inv, false)
}

func (d *Dispatcher) membership(ctx context.Context, inv *invocation, join bool) error {
	if len(inv.args) != 2 {
		return usagef("")
	}
	ifindex, err := target.ParseInt(inv.args[0])
	if err != nil || ifindex < 0 {
		return failf("Invalid interfaceIndex value.")
	}
	group, err := d.resolver.Group(ctx, inv.slot.Domain, inv.args[1])
	if err != nil {
		return failf("Error - %s is not a valid address:  %v.", inv.args[1], err)
	}

	fd := inv.slot.Handle
	if inv.slot.Domain == unix.AF_INET {
		opt := unix.IP_ADD_MEMBERSHIP
		if !join {
			opt = unix.IP_DROP_MEMBERSHIP
		}
		mreq := &unix.IPMreqn{Multiaddr: group.As4(), Ifindex: int32(ifindex)}
		if err := unix.SetsockoptIPMreqn(fd, unix.IPPROTO_IP, opt, mreq); err != nil {
			return apiError("setsockopt", err)
		}
		return nil
	}

	opt := unix.IPV6_ADD_MEMBERSHIP
	if !join {
		opt = unix.IPV6_DROP_MEMBERSHIP
	}
	mreq := &unix.IPv6Mreq{Multiaddr: group.As16(), Interface: uint32(ifindex)}
	if err := unix.SetsockoptIPv6Mreq(fd, unix.IPPROTO_IPV6, opt, mreq); err != nil {
		return apiError("setsockopt", err)
	}
	return nil
}
