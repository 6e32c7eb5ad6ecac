//go:build linux

// Package command parses operator input lines and runs the socket commands
// they name against the registry's current slot.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/pranshuparmar/socktest/internal/engine"
	"github.com/pranshuparmar/socktest/internal/pipeline"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/internal/target"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// ErrUsage marks malformed command arguments.
var ErrUsage = errors.New("usage")

// Console is where command output goes.
type Console interface {
	Printf(format string, args ...any)
	Verbosef(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Verbose() bool
}

// APIError is a failed socket call.
type APIError struct {
	Call   string
	Result model.RawResult
}

func (e *APIError) Error() string {
	errno := e.Result.Errno()
	return fmt.Sprintf("API returned %d.  Error %d passed in errno - %s.", e.Result.Value, int(errno), e.Result.Err)
}

func (e *APIError) Unwrap() error { return e.Result.Err }

func apiError(call string, err error) error {
	return &APIError{Call: call, Result: model.ResultOf(0, err)}
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) Unwrap() error { return ErrUsage }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// failure is reported verbatim.
type failure struct {
	msg string
}

func (e *failure) Error() string { return e.msg }

func failf(format string, args ...any) error {
	return &failure{msg: fmt.Sprintf(format, args...)}
}

type Config struct {
	Engine   *engine.Engine
	Console  Console
	Resolver *target.Resolver
	Flags    pipeline.FlagReader
	Color    bool
	Log      *logrus.Entry
}

// Dispatcher runs operator commands. Execute must not be called
// concurrently.
type Dispatcher struct {
	eng      *engine.Engine
	reg      *registry.Registry
	out      Console
	resolver *target.Resolver
	flags    pipeline.FlagReader
	color    bool
	log      *logrus.Entry
}

func New(cfg Config) *Dispatcher {
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = target.NewResolver()
	}
	return &Dispatcher{
		eng:      cfg.Engine,
		reg:      cfg.Engine.Registry(),
		out:      cfg.Console,
		resolver: resolver,
		flags:    cfg.Flags,
		color:    cfg.Color,
		log:      log,
	}
}

// Prompt shows the active model and current slot.
func (d *Dispatcher) Prompt() string {
	return fmt.Sprintf("%s %d:  ", d.eng.Model(), d.reg.Current())
}

// invocation is one parsed command line.
type invocation struct {
	args  []string
	slot  model.Slot
	index int
}

// Execute runs one input line and reports whether the operator asked to
// quit. Every failure is reported to the console.
func (d *Dispatcher) Execute(ctx context.Context, line string) (quit bool) {
	tokens, err := Tokenize(line)
	if err != nil {
		d.out.Errorf("Too many tokens in input line.")
		return false
	}
	if len(tokens) == 0 {
		return false
	}

	cmd, ok := lookup(tokens[0])
	if !ok {
		d.out.Errorf("Unrecognized command.")
		return false
	}
	if cmd.name == "quit" {
		return true
	}

	inv := &invocation{args: tokens[1:], index: d.reg.Current()}
	if cmd.needsSlot {
		if inv.slot, err = d.reg.CurrentSlot(); err != nil {
			d.report(cmd, err)
			return false
		}
	}

	log := d.log.WithFields(logrus.Fields{"command": cmd.name, "slot": inv.index})
	log.Debug("dispatch")
	if err := cmd.run(ctx, d, inv); err != nil {
		log.WithError(err).Debug("command failed")
		d.report(cmd, err)
	}
	return false
}

func (d *Dispatcher) report(cmd *command, err error) {
	var apiErr *APIError
	var usageErr *usageError
	var fail *failure
	switch {
	case errors.As(err, &fail):
		d.out.Errorf("%s", fail.msg)
	case errors.As(err, &apiErr):
		d.out.Errorf("%s", apiErr.Error())
	case errors.As(err, &usageErr):
		if usageErr.msg != "" {
			d.out.Errorf("%s", usageErr.msg)
		}
		d.out.Errorf("Usage:  %s.", cmd.usage)
	case errors.Is(err, engine.ErrCancelled):
		d.out.Verbosef("Operation abandoned.")
	case errors.Is(err, registry.ErrAllSlotsBusy):
		d.out.Errorf("All %d sockets are in use.", registry.Capacity)
	case errors.Is(err, registry.ErrSlotNotOpen):
		d.out.Errorf("Socket number %d not open.", d.reg.Current())
	default:
		d.out.Errorf("Error - %s.", strings.TrimSuffix(err.Error(), "."))
	}
}

// parseFlags parses args with a per-command flag set.
func parseFlags(name string, args []string, define func(fs *pflag.FlagSet)) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	define(fs)
	if err := fs.Parse(args); err != nil {
		return nil, usagef("%s", capitalize(err.Error())+".")
	}
	return fs, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parsePort(token string) (int, error) {
	port, err := target.ParseInt(token)
	if err != nil || port < 0 || port > 0xffff {
		return 0, usagef("Invalid port number.")
	}
	return port, nil
}
