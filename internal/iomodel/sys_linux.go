//go:build linux

package iomodel

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// fdSetSize is FD_SETSIZE for the kernel's select(2).
const fdSetSize = 1024

type unixSys struct{}

// OS returns the Sys backed by the running kernel.
func OS() Sys {
	return unixSys{}
}

func (unixSys) GetFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
}

func (unixSys) SetFlags(fd, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}

func (unixSys) SetOwner(fd, pid int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETOWN, pid)
	return err
}

func (unixSys) Getpid() int {
	return unix.Getpid()
}

func (unixSys) Select(fd int, cond model.Condition, timeout time.Duration) (Readiness, error) {
	if fd < 0 || fd >= fdSetSize {
		return Readiness{}, fmt.Errorf("fd %d outside select range: %w", fd, unix.EBADF)
	}
	var r, w, e unix.FdSet
	switch cond {
	case model.ReadyForRead:
		r.Set(fd)
	case model.ReadyForWrite:
		w.Set(fd)
	case model.ReadyForException:
		e.Set(fd)
	}
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	n, err := unix.Select(fd+1, &r, &w, &e, &tv)
	if err != nil {
		return Readiness{}, err
	}
	return Readiness{
		Count:  n,
		Read:   r.IsSet(fd),
		Write:  w.IsSet(fd),
		Except: e.IsSet(fd),
	}, nil
}
