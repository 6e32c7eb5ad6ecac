package iomodel

import (
	"context"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// blockingModel runs calls on a plain blocking descriptor. Writes are
// expected not to block; every other call is expected to.
type blockingModel struct {
	deps        Deps
	shouldBlock bool
}

func (m *blockingModel) Kind() model.Kind { return model.Blocking }

func (m *blockingModel) PreCall(_ context.Context, _ int, cond model.Condition) error {
	m.shouldBlock = cond != model.ReadyForWrite
	m.deps.Verifier.MarkStart()
	return nil
}

func (m *blockingModel) PostCall(_ context.Context, _ int, res model.RawResult) bool {
	// A failed call returns without waiting for readiness.
	m.deps.Verifier.Check(m.shouldBlock && !res.Failed())
	return true
}
