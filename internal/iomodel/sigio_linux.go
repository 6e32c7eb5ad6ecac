//go:build linux

package iomodel

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// SIGIONotifier turns SIGIO deliveries into Notifier events.
//
// SIGIO stays subscribed until Close, since its default action terminates
// the process. Install and Restore only switch where deliveries go.
type SIGIONotifier struct {
	report Reporter

	installed atomic.Bool
	received  atomic.Bool
	ready     chan struct{}

	sigs     chan os.Signal
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSIGIONotifier subscribes to SIGIO. Close releases the subscription.
func NewSIGIONotifier(report Reporter) *SIGIONotifier {
	n := &SIGIONotifier{
		report: report,
		ready:  make(chan struct{}, 1),
		sigs:   make(chan os.Signal, 8),
		stop:   make(chan struct{}),
	}
	signal.Notify(n.sigs, unix.SIGIO)
	go n.loop()
	return n
}

func (n *SIGIONotifier) loop() {
	for {
		select {
		case <-n.sigs:
			n.deliver()
		case <-n.stop:
			return
		}
	}
}

func (n *SIGIONotifier) deliver() {
	if !n.installed.Load() {
		n.report.Warnf("Error - Unexpected SIGIO signal.")
		return
	}
	n.received.Store(true)
	select {
	case n.ready <- struct{}{}:
	default:
	}
	n.report.Verbosef("SIGIO handler called.")
}

func (n *SIGIONotifier) Install() error {
	n.installed.Store(true)
	return nil
}

func (n *SIGIONotifier) Restore() error {
	n.installed.Store(false)
	return nil
}

func (n *SIGIONotifier) Reset() {
	n.received.Store(false)
	select {
	case <-n.ready:
	default:
	}
}

func (n *SIGIONotifier) Received() bool {
	return n.received.Load()
}

func (n *SIGIONotifier) Ready() <-chan struct{} {
	return n.ready
}

// Close stops listening for SIGIO.
func (n *SIGIONotifier) Close() {
	n.stopOnce.Do(func() {
		signal.Stop(n.sigs)
		close(n.stop)
	})
}
