package iomodel

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// signalModel waits for SIGIO before running a read-direction call. The
// socket is treated as always writable, so write-direction calls run at once.
type signalModel struct {
	deps Deps
	log  *logrus.Entry
}

func (m *signalModel) Kind() model.Kind { return model.Signal }

func (m *signalModel) PreCall(ctx context.Context, fd int, cond model.Condition) error {
	if cond == model.ReadyForWrite {
		m.deps.Verifier.MarkStart()
		return nil
	}

	n := m.deps.Notifier
	if err := n.Install(); err != nil {
		m.deps.Report.Warnf("Error - cannot install SIGIO handler - %v.", err)
		return err
	}
	if err := m.deps.Sys.SetOwner(fd, m.deps.Sys.Getpid()); err != nil {
		m.deps.Report.Warnf("Error on F_SETOWN - %v.", err)
		m.restore(fd, false)
		return err
	}

	// The flag must be clear before delivery is enabled, or a notification
	// raised by enabling it would be lost.
	n.Reset()
	if err := setFlag(m.deps.Sys, m.deps.Report, fd, unix.O_ASYNC); err != nil {
		m.restore(fd, false)
		return err
	}

	ticker := time.NewTicker(m.deps.WaitStep)
	defer ticker.Stop()
	for !n.Received() {
		select {
		case <-ctx.Done():
			m.log.WithField("fd", fd).Debug("wait for SIGIO abandoned")
			m.restore(fd, true)
			return nil
		case <-n.Ready():
		case <-ticker.C:
			m.deps.Report.Verbosef("Tick.")
		}
	}
	m.log.WithFields(logrus.Fields{"fd": fd, "cond": cond.String()}).Debug("SIGIO received")
	m.deps.Verifier.MarkStart()
	return nil
}

func (m *signalModel) PostCall(_ context.Context, fd int, _ model.RawResult) bool {
	m.deps.Verifier.Check(false)
	m.restore(fd, true)
	return true
}

// restore puts back the default notification handler and, when async is set,
// disables asynchronous delivery on fd.
func (m *signalModel) restore(fd int, async bool) {
	if err := m.deps.Notifier.Restore(); err != nil {
		m.deps.Report.Warnf("Error - cannot restore SIGIO handler - %v.", err)
	}
	if async {
		_ = clearFlag(m.deps.Sys, m.deps.Report, fd, unix.O_ASYNC)
	}
}
