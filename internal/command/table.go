//go:build linux

package command

import "context"

type command struct {
	name      string
	usage     string
	needsSlot bool
	run       func(ctx context.Context, d *Dispatcher, inv *invocation) error
}

var commands []*command

func init() {
	commands = []*command{
		{name: "quit", usage: "quit"},
		{name: "help", usage: "help", run: doHelp},
		{name: "model", usage: "model *blocking | nonblocking | select | signal", run: doModel},
		{name: "use", usage: "use number", run: doUse},
		{name: "socket", usage: "socket [-d domain] [-t type] [-p protocol]", run: doSocket},
		{name: "bind", usage: "bind portnumber [ hostaddress ]", needsSlot: true, run: doBind},
		{name: "connect", usage: "connect portnumber [ hostaddress ]", needsSlot: true, run: doConnect},
		{name: "listen", usage: "listen [backlogCount]", needsSlot: true, run: doListen},
		{name: "accept", usage: "accept", needsSlot: true, run: doAccept},
		{name: "recvmsg", usage: "recvmsg [-f OOB]", needsSlot: true, run: doRecvmsg},
		{name: "sendmsg", usage: "sendmsg [-a hostaddress port] [-f OOB]", needsSlot: true, run: doSendmsg},
		{name: "read", usage: "read", needsSlot: true, run: doRead},
		{name: "write", usage: "write", needsSlot: true, run: doWrite},
		{name: "setsockopt", usage: "setsockopt level opt [-i value]", needsSlot: true, run: doSetsockopt},
		{name: "getsockopt", usage: "getsockopt level opt [-i]", needsSlot: true, run: doGetsockopt},
		{name: "multijoin", usage: "multijoin interfaceIndex hostaddress", needsSlot: true, run: doMultijoin},
		{name: "multileave", usage: "multileave interfaceIndex hostaddress", needsSlot: true, run: doMultileave},
		{name: "shutdown", usage: "shutdown [SHUT_RD | SHUT_WR | SHUT_RDWR]", needsSlot: true, run: doShutdown},
		{name: "getsockname", usage: "getsockname", needsSlot: true, run: doGetsockname},
		{name: "getpeername", usage: "getpeername", needsSlot: true, run: doGetpeername},
		{name: "close", usage: "close", needsSlot: true, run: doClose},
		{name: "sockets", usage: "sockets [-j]", run: doSockets},
		{name: "status", usage: "status", needsSlot: true, run: doStatus},
	}
}

func lookup(name string) (*command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Usage lists every command's usage line.
func Usage() []string {
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		lines = append(lines, c.usage)
	}
	return lines
}
