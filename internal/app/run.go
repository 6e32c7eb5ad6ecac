//go:build linux

package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/socktest/internal/command"
	"github.com/pranshuparmar/socktest/internal/config"
	"github.com/pranshuparmar/socktest/internal/engine"
	"github.com/pranshuparmar/socktest/internal/iomodel"
	"github.com/pranshuparmar/socktest/internal/output"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/internal/tui"
	"github.com/pranshuparmar/socktest/internal/verify"
)

// session is the process's terminal.
type session struct {
	plain  bool
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newLogger(cfg config.Config, s session) (*logrus.Logger, func(), error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		return logger, func() { f.Close() }, nil
	case s.plain:
		logger.SetOutput(s.stderr)
	default:
		// The full-screen interface owns the terminal.
		logger.SetOutput(io.Discard)
	}
	return logger, func() {}, nil
}

func run(ctx context.Context, cfg config.Config, s session) error {
	logger, closeLog, err := newLogger(cfg, s)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logrus.NewEntry(logger)

	var sink output.Sink
	var screen *tui.Sink
	if s.plain {
		sink = output.NewWriterSink(s.stdout, s.stderr, cfg.Color)
	} else {
		screen = &tui.Sink{}
		sink = screen
	}
	console := output.NewConsole(sink, cfg.Verbose)

	sys := iomodel.OS()
	notifier := iomodel.NewSIGIONotifier(console)
	defer notifier.Close()

	reg := registry.New()
	eng, err := engine.New(reg, iomodel.Deps{
		Sys:      sys,
		Verifier: verify.New(cfg.BlockThreshold.Duration, console),
		Report:   console,
		Notifier: notifier,
		Retry:    backoff.NewConstantBackOff(cfg.RetryInterval.Duration),
		WaitStep: cfg.WaitStep.Duration,
	}, log)
	if err != nil {
		return err
	}
	if err := eng.SetModel(cfg.Kind()); err != nil {
		return err
	}
	disp := command.New(command.Config{
		Engine:  eng,
		Console: console,
		Flags:   sys,
		Color:   cfg.Color,
		Log:     log,
	})
	intr := &engine.Interrupter{}

	log.WithFields(logrus.Fields{
		"model":     cfg.Model,
		"threshold": cfg.BlockThreshold.Duration,
		"plain":     s.plain,
	}).Info("session started")

	g, gctx := errgroup.WithContext(ctx)
	front, stop := context.WithCancel(gctx)
	g.Go(func() error {
		return forwardSignals(front, console, intr)
	})
	g.Go(func() error {
		defer stop()
		if s.plain {
			return runPlain(front, s.stdin, s.stdout, disp, intr)
		}
		return tui.Start(front, tui.Options{
			Executor:    disp,
			Interrupter: intr,
			Version:     versionString(),
			Log:         log,
		}, screen)
	})
	err = g.Wait()

	if cerr := reg.CloseAll(unix.Close); cerr != nil {
		log.WithError(cerr).Warn("closing sockets")
	}
	log.Info("session ended")
	return err
}
