package iomodel

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/verify"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// trace is a goroutine-safe event log shared by the fakes.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (t *trace) add(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

type selectReply struct {
	r   Readiness
	err error
}

type fakeSys struct {
	tr      *trace
	mu      sync.Mutex
	flags   map[int]int
	replies []selectReply
	selects int
}

func newFakeSys(tr *trace) *fakeSys {
	return &fakeSys{tr: tr, flags: make(map[int]int)}
}

func (s *fakeSys) GetFlags(fd int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[fd], nil
}

func (s *fakeSys) SetFlags(fd, flags int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[fd] = flags
	s.tr.add("setfl %s", flagNames(flags))
	return nil
}

func (s *fakeSys) SetOwner(fd, pid int) error {
	s.tr.add("setown %d", pid)
	return nil
}

func (s *fakeSys) Getpid() int { return 4242 }

func (s *fakeSys) Select(fd int, cond model.Condition, timeout time.Duration) (Readiness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.selects
	s.selects++
	s.tr.add("select %s", cond)
	if len(s.replies) == 0 {
		return Readiness{}, nil
	}
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i].r, s.replies[i].err
}

func (s *fakeSys) flag(fd int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[fd]
}

func (s *fakeSys) selectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selects
}

func flagNames(flags int) string {
	switch flags {
	case 0:
		return "none"
	case unix.O_NONBLOCK:
		return "nonblock"
	case unix.O_ASYNC:
		return "async"
	}
	return fmt.Sprintf("%#x", flags)
}

type fakeNotifier struct {
	tr        *trace
	mu        sync.Mutex
	installed bool
	received  bool
	ready     chan struct{}
}

func newFakeNotifier(tr *trace) *fakeNotifier {
	return &fakeNotifier{tr: tr, ready: make(chan struct{}, 1)}
}

func (n *fakeNotifier) Install() error {
	n.mu.Lock()
	n.installed = true
	n.mu.Unlock()
	n.tr.add("install")
	return nil
}

func (n *fakeNotifier) Restore() error {
	n.mu.Lock()
	n.installed = false
	n.mu.Unlock()
	n.tr.add("restore")
	return nil
}

func (n *fakeNotifier) Reset() {
	n.mu.Lock()
	n.received = false
	n.mu.Unlock()
	n.tr.add("reset")
}

func (n *fakeNotifier) Received() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.received
}

func (n *fakeNotifier) Ready() <-chan struct{} { return n.ready }

func (n *fakeNotifier) fire() {
	n.mu.Lock()
	n.received = true
	n.mu.Unlock()
	select {
	case n.ready <- struct{}{}:
	default:
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu       sync.Mutex
	warnings []string
	verbose  []string
}

func (r *recorder) Warnf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *recorder) Verbosef(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verbose = append(r.verbose, fmt.Sprintf(format, args...))
}

func (r *recorder) warned() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

type harness struct {
	tr    *trace
	sys   *fakeSys
	note  *fakeNotifier
	clock *fakeClock
	rec   *recorder
	deps  Deps
}

func newHarness() *harness {
	tr := &trace{}
	h := &harness{
		tr:    tr,
		sys:   newFakeSys(tr),
		note:  newFakeNotifier(tr),
		clock: &fakeClock{now: time.Unix(1700000000, 0)},
		rec:   &recorder{},
	}
	v := verify.New(0, h.rec)
	v.Clock = h.clock
	h.deps = Deps{
		Sys:      h.sys,
		Verifier: v,
		Report:   h.rec,
		Notifier: h.note,
		Retry:    backoff.NewConstantBackOff(time.Millisecond),
		WaitStep: 10 * time.Millisecond,
	}
	return h
}

func (h *harness) model(kind model.Kind) Model {
	m, err := New(kind, h.deps)
	if err != nil {
		panic(err)
	}
	return m
}
