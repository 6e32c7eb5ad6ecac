package model

import (
	"errors"
	"fmt"
	"strings"
)

// Condition is the readiness state a socket must be in before an operation
// is expected to proceed without blocking.
type Condition int

const (
	ReadyForRead Condition = iota
	ReadyForWrite
	ReadyForException
)

func (c Condition) String() string {
	switch c {
	case ReadyForRead:
		return "read"
	case ReadyForWrite:
		return "write"
	case ReadyForException:
		return "exception"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// Kind names the I/O discipline governing how the harness waits for and
// verifies readiness around socket operations.
type Kind int

const (
	Blocking Kind = iota
	NonBlocking
	Select
	Signal
)

// Kinds lists every I/O model in prompt order.
var Kinds = []Kind{Blocking, NonBlocking, Select, Signal}

var ErrUnknownModel = errors.New("unrecognized model")

func (k Kind) String() string {
	switch k {
	case Blocking:
		return "blocking"
	case NonBlocking:
		return "nonblocking"
	case Select:
		return "select"
	case Signal:
		return "signal"
	default:
		return fmt.Sprintf("model(%d)", int(k))
	}
}

// ParseKind maps a model name to its Kind. An empty name selects Blocking.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Blocking, nil
	}
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return Blocking, fmt.Errorf("%w %s", ErrUnknownModel, name)
}
