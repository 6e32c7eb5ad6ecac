// Package engine drives model-sensitive socket operations through the active
// I/O model's retry protocol.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pranshuparmar/socktest/internal/iomodel"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// ErrCancelled is returned by Perform when the operation was abandoned
// before the socket call ran.
var ErrCancelled = errors.New("operation interrupted")

// Operation performs one socket call on the current slot and returns its raw
// outcome. It takes no arguments: the dispatcher binds them in.
type Operation func() model.RawResult

// Engine owns the active I/O model and applies it to operations on the
// registry's current slot.
type Engine struct {
	reg    *registry.Registry
	models map[model.Kind]iomodel.Model
	active model.Kind
	log    *logrus.Entry
}

// New builds an engine with all four models sharing deps.
func New(reg *registry.Registry, deps iomodel.Deps, log *logrus.Entry) (*Engine, error) {
	if deps.Log == nil {
		deps.Log = log
	}
	models := make([]iomodel.Model, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		m, err := iomodel.New(k, deps)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return NewWithModels(reg, log, models...), nil
}

// NewWithModels builds an engine from explicit model implementations. The
// blocking model is active initially.
func NewWithModels(reg *registry.Registry, log *logrus.Entry, models ...iomodel.Model) *Engine {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	e := &Engine{
		reg:    reg,
		models: make(map[model.Kind]iomodel.Model, len(models)),
		active: model.Blocking,
		log:    log,
	}
	for _, m := range models {
		e.models[m.Kind()] = m
	}
	return e
}

// Registry returns the socket registry the engine operates on.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Model returns the active model kind.
func (e *Engine) Model() model.Kind {
	return e.active
}

// SetModel switches the active model. It persists until changed again.
func (e *Engine) SetModel(k model.Kind) error {
	if _, ok := e.models[k]; !ok {
		return fmt.Errorf("%w %s", model.ErrUnknownModel, k)
	}
	e.active = k
	return nil
}

// Perform runs op on the current slot under the active model:
//
//	loop { PreCall; abort if ctx is done; op; PostCall } until PostCall is done
//
// When ctx is cancelled during a PreCall, op and PostCall are not invoked and
// ErrCancelled is returned.
func (e *Engine) Perform(ctx context.Context, cond model.Condition, op Operation) (model.RawResult, error) {
	slot, err := e.reg.CurrentSlot()
	if err != nil {
		return model.RawResult{}, err
	}
	m, ok := e.models[e.active]
	if !ok {
		return model.RawResult{}, fmt.Errorf("%w %s", model.ErrUnknownModel, e.active)
	}
	log := e.log.WithFields(logrus.Fields{
		"model": e.active.String(),
		"slot":  e.reg.Current(),
		"fd":    slot.Handle,
		"cond":  cond.String(),
	})

	for attempt := 1; ; attempt++ {
		if err := m.PreCall(ctx, slot.Handle, cond); err != nil {
			log.WithError(err).Debug("pre-call failed")
			return model.RawResult{}, err
		}
		if ctx.Err() != nil {
			log.WithField("attempt", attempt).Debug("operation abandoned")
			return model.RawResult{}, fmt.Errorf("%w: %v", ErrCancelled, context.Cause(ctx))
		}
		res := op()
		if m.PostCall(ctx, slot.Handle, res) {
			log.WithFields(logrus.Fields{"attempt": attempt, "value": res.Value, "errno": res.Errno()}).Debug("operation complete")
			return res, nil
		}
		log.WithField("attempt", attempt).Debug("retrying")
	}
}
