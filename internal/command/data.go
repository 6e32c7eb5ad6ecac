//go:build linux

package command

import (
	"bytes"
	"context"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/output"
	"github.com/pranshuparmar/socktest/internal/target"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// BufferSize is the size of every read and write.
const BufferSize = 100

var fill = bytes.Repeat([]byte{'*'}, BufferSize)

func msgFlags(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	v, err := target.MsgFlags.Value(name)
	if err != nil {
		return 0, failf("%s is not a recognized option value.", name)
	}
	return v, nil
}

func (d *Dispatcher) showReceived(slot model.Slot, data []byte, from unix.Sockaddr) {
	if !d.out.Verbose() {
		return
	}
	if len(data) == 0 {
		d.out.Verbosef("End of file returned.")
	} else {
		d.out.Verbosef("%d bytes read.", len(data))
	}
	if slot.Type != unix.SOCK_STREAM && from != nil {
		addr, _ := target.AddrPort(from)
		if addr.IsValid() {
			d.out.Verbosef("Source address = %s.", addr)
		}
	}
	n, hex := output.HexPrefix(data)
	d.out.Verbosef("First %d bytes received are: %s", n, hex)
}

func (d *Dispatcher) showWritten(n int) {
	if n == 0 {
		d.out.Verbosef("Zero count returned.")
		return
	}
	d.out.Verbosef("%d bytes written.", n)
}

func doRecvmsg(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var flagName string
	fs, err := parseFlags("recvmsg", inv.args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&flagName, "flags", "f", "", "")
	})
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	flags, err := msgFlags(flagName)
	if err != nil {
		return err
	}

	fd := inv.slot.Handle
	buf := make([]byte, BufferSize)
	var from unix.Sockaddr
	res, err := d.eng.Perform(ctx, model.ReadyForRead, func() model.RawResult {
		n, _, _, sa, err := unix.Recvmsg(fd, buf, nil, flags)
		from = sa
		return model.ResultOf(n, err)
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "recvmsg", Result: res}
	}
	d.showReceived(inv.slot, buf[:res.Value], from)

	if inv.slot.Type != unix.SOCK_STREAM {
		return nil
	}
	atMark, err := unix.IoctlGetInt(fd, unix.SIOCATMARK)
	if err != nil {
		d.out.Errorf("Error in ioctl(SIOCATMARK) call - %v.", err)
		return nil
	}
	if atMark != 0 {
		d.out.Printf("SIOCATMARK returned true.")
	}
	return nil
}

func doSendmsg(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var host, flagName string
	fs, err := parseFlags("sendmsg", inv.args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&host, "address", "a", "", "")
		fs.StringVarP(&flagName, "flags", "f", "", "")
	})
	if err != nil {
		return err
	}
	flags, err := msgFlags(flagName)
	if err != nil {
		return err
	}

	var to unix.Sockaddr
	if fs.Changed("address") {
		if fs.NArg() != 1 {
			return usagef("Invalid port number.")
		}
		if to, err = d.address(ctx, inv.slot, host, fs.Arg(0), target.Loopback); err != nil {
			return err
		}
	} else if fs.NArg() > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}

	fd := inv.slot.Handle
	res, err := d.eng.Perform(ctx, model.ReadyForWrite, func() model.RawResult {
		return model.ResultOf(unix.SendmsgN(fd, fill, nil, to, flags))
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "sendmsg", Result: res}
	}
	d.showWritten(res.Value)
	return nil
}

func doRead(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	fd := inv.slot.Handle
	buf := make([]byte, BufferSize)
	res, err := d.eng.Perform(ctx, model.ReadyForRead, func() model.RawResult {
		return model.ResultOf(unix.Read(fd, buf))
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "read", Result: res}
	}
	d.showReceived(inv.slot, buf[:res.Value], nil)
	return nil
}

func doWrite(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	fd := inv.slot.Handle
	res, err := d.eng.Perform(ctx, model.ReadyForWrite, func() model.RawResult {
		return model.ResultOf(unix.Write(fd, fill))
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return &APIError{Call: "write", Result: res}
	}
	d.showWritten(res.Value)
	return nil
}
