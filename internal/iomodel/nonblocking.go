package iomodel

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// nonblockingModel sets O_NONBLOCK around each attempt and polls by retrying
// the call until it stops reporting that it would block.
type nonblockingModel struct {
	deps    Deps
	log     *logrus.Entry
	attempt int
}

func (m *nonblockingModel) Kind() model.Kind { return model.NonBlocking }

func (m *nonblockingModel) PreCall(ctx context.Context, fd int, _ model.Condition) error {
	if ctx.Err() != nil {
		return nil
	}
	m.deps.Verifier.MarkStart()
	// setFlag reports failures; the attempt runs regardless.
	_ = setFlag(m.deps.Sys, m.deps.Report, fd, unix.O_NONBLOCK)
	m.deps.Report.Verbosef("Tick.")
	return nil
}

func (m *nonblockingModel) PostCall(ctx context.Context, fd int, res model.RawResult) bool {
	m.deps.Verifier.Check(false)
	_ = clearFlag(m.deps.Sys, m.deps.Report, fd, unix.O_NONBLOCK)

	done := !res.Failed() || !wouldBlock(res.Err)
	switch {
	case res.Failed():
		m.deps.Report.Verbosef("API result is %d, errno is '%v'.", res.Value, res.Err)
	case res.Value != 0:
		m.deps.Report.Verbosef("API result is %d.", res.Value)
	default:
		m.deps.Report.Verbosef("API result is zero.")
	}

	m.attempt++
	if done {
		m.attempt = 0
		m.deps.Retry.Reset()
		return true
	}
	wait := m.deps.Retry.NextBackOff()
	if wait == backoff.Stop {
		m.log.WithField("attempt", m.attempt).Debug("retry policy exhausted")
		m.attempt = 0
		m.deps.Retry.Reset()
		return true
	}
	m.log.WithFields(logrus.Fields{"attempt": m.attempt, "wait": wait, "errno": res.Errno()}).Debug("operation would block, retrying")
	sleepCtx(ctx, wait)
	return false
}

// wouldBlock reports whether err is one of the "try again" results of a
// nonblocking socket call.
func wouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINPROGRESS) ||
		errors.Is(err, unix.EALREADY)
}
