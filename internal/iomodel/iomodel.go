// Package iomodel implements the four I/O readiness disciplines the harness
// can run socket calls under. Every model wraps a call with a PreCall that
// prepares (and possibly waits for) readiness and a PostCall that verifies
// what happened and decides whether the call has to be retried.
package iomodel

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/pranshuparmar/socktest/internal/verify"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// DefaultWaitStep bounds a single readiness wait, and so how quickly an
// interrupt is noticed.
const DefaultWaitStep = time.Second

// DefaultRetryInterval is how long the nonblocking model pauses before
// retrying a call that would have blocked.
const DefaultRetryInterval = time.Second

// Model is one I/O discipline.
type Model interface {
	Kind() model.Kind

	// PreCall prepares fd for an operation needing cond. It may block until
	// the socket is ready or ctx is cancelled; the caller checks ctx after it
	// returns. A non-nil error aborts the operation.
	PreCall(ctx context.Context, fd int, cond model.Condition) error

	// PostCall inspects the raw result and reports whether the operation is
	// complete. false asks the caller to run PreCall and the operation again.
	PostCall(ctx context.Context, fd int, res model.RawResult) bool
}

// Reporter receives operator-facing messages.
type Reporter interface {
	verify.Reporter
}

// Readiness is what one multiplexing wait observed for a single fd.
type Readiness struct {
	Count  int
	Read   bool
	Write  bool
	Except bool
}

// Has reports whether the fd was flagged in the set matching cond.
func (r Readiness) Has(cond model.Condition) bool {
	switch cond {
	case model.ReadyForRead:
		return r.Read
	case model.ReadyForWrite:
		return r.Write
	case model.ReadyForException:
		return r.Except
	}
	return false
}

// Sys is the set of OS readiness primitives the models rely on.
type Sys interface {
	GetFlags(fd int) (int, error)
	SetFlags(fd, flags int) error
	SetOwner(fd, pid int) error
	Getpid() int
	// Select waits up to timeout for fd to become ready for cond.
	Select(fd int, cond model.Condition, timeout time.Duration) (Readiness, error)
}

// Notifier delivers asynchronous readiness notifications to the signal model.
type Notifier interface {
	// Install routes notifications to the waiting loop.
	Install() error
	// Restore routes notifications back to the unexpected-notification report.
	Restore() error
	// Reset clears the received flag.
	Reset()
	Received() bool
	// Ready is signalled when a notification arrives while installed.
	Ready() <-chan struct{}
}

// Deps are the collaborators shared by every model.
type Deps struct {
	Sys      Sys
	Verifier *verify.Verifier
	Report   Reporter
	Notifier Notifier
	// Retry paces the nonblocking model's retries. Nil means a constant
	// DefaultRetryInterval.
	Retry    backoff.BackOff
	WaitStep time.Duration
	Log      *logrus.Entry
}

func (d *Deps) setDefaults() {
	if d.Retry == nil {
		d.Retry = backoff.NewConstantBackOff(DefaultRetryInterval)
	}
	if d.WaitStep <= 0 {
		d.WaitStep = DefaultWaitStep
	}
	if d.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		d.Log = logrus.NewEntry(l)
	}
}

// New builds the model for kind.
func New(kind model.Kind, d Deps) (Model, error) {
	d.setDefaults()
	if d.Sys == nil || d.Verifier == nil || d.Report == nil {
		return nil, fmt.Errorf("iomodel: %s model needs Sys, Verifier and Report", kind)
	}
	log := d.Log.WithField("model", kind.String())
	switch kind {
	case model.Blocking:
		return &blockingModel{deps: d}, nil
	case model.NonBlocking:
		return &nonblockingModel{deps: d, log: log}, nil
	case model.Select:
		return &selectModel{deps: d, log: log}, nil
	case model.Signal:
		if d.Notifier == nil {
			return nil, fmt.Errorf("iomodel: signal model needs a Notifier")
		}
		return &signalModel{deps: d, log: log}, nil
	}
	return nil, fmt.Errorf("iomodel: %w", model.ErrUnknownModel)
}

// setFlag ORs flag into the file status flags of fd.
func setFlag(sys Sys, report Reporter, fd, flag int) error {
	flags, err := sys.GetFlags(fd)
	if err != nil {
		report.Warnf("Error on F_GETFL - %v.", err)
		return err
	}
	if err := sys.SetFlags(fd, flags|flag); err != nil {
		report.Warnf("Error on F_SETFL - %v.", err)
		return err
	}
	return nil
}

// clearFlag removes flag from the file status flags of fd.
func clearFlag(sys Sys, report Reporter, fd, flag int) error {
	flags, err := sys.GetFlags(fd)
	if err != nil {
		report.Warnf("Error on F_GETFL - %v.", err)
		return err
	}
	if err := sys.SetFlags(fd, flags&^flag); err != nil {
		report.Warnf("Error on F_SETFL - %v.", err)
		return err
	}
	return nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
