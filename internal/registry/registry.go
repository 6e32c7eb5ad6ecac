// Package registry tracks the fixed table of open test sockets and the slot
// that commands currently operate on.
package registry

import (
	"errors"
	"fmt"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// Capacity is the number of sockets that may be open at once.
const Capacity = 10

var (
	ErrAllSlotsBusy = fmt.Errorf("all %d sockets are in use", Capacity)
	ErrSlotNotOpen  = errors.New("socket not open")
)

// Registry is an ordered table of socket slots plus the current index.
//
// It is not safe for concurrent use. The harness mutates it only from the
// goroutine running the current command.
type Registry struct {
	slots   [Capacity]model.Slot
	current int
}

// New returns a registry with every slot unused and slot 0 current.
func New() *Registry {
	r := &Registry{}
	for i := range r.slots {
		r.slots[i] = model.Slot{Handle: model.UnusedHandle}
	}
	return r
}

// Allocate returns the lowest unused slot index. The slot stays unused until
// Bind installs a handle into it.
func (r *Registry) Allocate() (int, error) {
	for i, s := range r.slots {
		if !s.Open() {
			return i, nil
		}
	}
	return -1, ErrAllSlotsBusy
}

// Bind installs slot into index i.
func (r *Registry) Bind(i int, slot model.Slot) error {
	if i < 0 || i >= Capacity {
		return fmt.Errorf("socket number %d: %w", i, ErrSlotNotOpen)
	}
	if slot.Handle < 0 {
		return fmt.Errorf("socket number %d: invalid handle %d", i, slot.Handle)
	}
	r.slots[i] = slot
	return nil
}

// Release clears slot i back to unused.
func (r *Registry) Release(i int) error {
	if _, err := r.Slot(i); err != nil {
		return err
	}
	r.slots[i] = model.Slot{Handle: model.UnusedHandle}
	return nil
}

// Select makes slot i current.
func (r *Registry) Select(i int) error {
	if _, err := r.Slot(i); err != nil {
		return err
	}
	r.current = i
	return nil
}

// Slot returns slot i if it is open.
func (r *Registry) Slot(i int) (model.Slot, error) {
	if i < 0 || i >= Capacity || !r.slots[i].Open() {
		return model.Slot{}, fmt.Errorf("socket number %d: %w", i, ErrSlotNotOpen)
	}
	return r.slots[i], nil
}

// Current returns the current slot index, open or not.
func (r *Registry) Current() int {
	return r.current
}

// CurrentSlot returns the current slot, failing if it is not open.
func (r *Registry) CurrentSlot() (model.Slot, error) {
	return r.Slot(r.current)
}

// Slots returns a copy of the whole table.
func (r *Registry) Slots() []model.Slot {
	out := make([]model.Slot, Capacity)
	copy(out, r.slots[:])
	return out
}

// CloseAll releases every open slot, calling closeFn on each handle. It keeps
// going after failures and returns them joined.
func (r *Registry) CloseAll(closeFn func(handle int) error) error {
	var errs []error
	for i, s := range r.slots {
		if !s.Open() {
			continue
		}
		if err := closeFn(s.Handle); err != nil {
			errs = append(errs, fmt.Errorf("close socket %d (fd %d): %w", i, s.Handle, err))
		}
		r.slots[i] = model.Slot{Handle: model.UnusedHandle}
	}
	return errors.Join(errs...)
}
