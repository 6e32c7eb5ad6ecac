package iomodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// selectModel waits in select(2) until the socket is ready for the needed
// condition and only then runs the call.
type selectModel struct {
	deps Deps
	log  *logrus.Entry
}

func (m *selectModel) Kind() model.Kind { return model.Select }

func (m *selectModel) PreCall(ctx context.Context, fd int, cond model.Condition) error {
	for ticks := 0; ; ticks++ {
		r, err := m.deps.Sys.Select(fd, cond, m.deps.WaitStep)
		switch {
		case errors.Is(err, unix.EINTR):
			m.log.WithField("fd", fd).Debug("select interrupted")
		case err != nil:
			m.deps.Report.Warnf("Error - select() failed - %v.", err)
			return fmt.Errorf("select: %w", err)
		case r.Count == 0:
			m.deps.Report.Verbosef("Tick.")
		default:
			if !r.Has(cond) {
				m.deps.Report.Warnf("Error - Expected fd bit not set after select() returned %d.", r.Count)
			} else {
				m.deps.Report.Verbosef("select() exited as expected.")
			}
			m.log.WithFields(logrus.Fields{"fd": fd, "cond": cond.String(), "ticks": ticks}).Debug("socket ready")
			m.deps.Verifier.MarkStart()
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (m *selectModel) PostCall(_ context.Context, _ int, _ model.RawResult) bool {
	m.deps.Verifier.Check(false)
	return true
}
