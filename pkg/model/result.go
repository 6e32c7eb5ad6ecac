package model

import (
	"errors"

	"golang.org/x/sys/unix"
)

// RawResult is the unprocessed outcome of one socket call: the value the call
// returned and, when it failed, the errno it reported.
type RawResult struct {
	Value int
	Err   error
}

// Failed reports whether the call returned an error.
func (r RawResult) Failed() bool {
	return r.Err != nil
}

// Errno returns the OS error code carried by the result, or 0.
func (r RawResult) Errno() unix.Errno {
	var errno unix.Errno
	if errors.As(r.Err, &errno) {
		return errno
	}
	return 0
}

// ResultOf builds a RawResult from a value/error pair as returned by the
// x/sys/unix wrappers, which report -1 alongside the error.
func ResultOf(value int, err error) RawResult {
	if err != nil {
		return RawResult{Value: -1, Err: err}
	}
	return RawResult{Value: value}
}
