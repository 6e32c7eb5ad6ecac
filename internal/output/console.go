package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies an operator message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Sink receives formatted operator messages.
type Sink interface {
	Emit(level Level, text string)
}

// Console formats operator messages and forwards them to a Sink. It is safe
// for concurrent use; SIGIO deliveries report from their own goroutine.
type Console struct {
	mu      sync.Mutex
	sink    Sink
	verbose bool
}

func NewConsole(sink Sink, verbose bool) *Console {
	return &Console{sink: sink, verbose: verbose}
}

func (c *Console) emit(level Level, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if level == LevelVerbose && !c.verbose {
		return
	}
	c.sink.Emit(level, text)
}

// Printf reports a result.
func (c *Console) Printf(format string, args ...any) { c.emit(LevelInfo, format, args...) }

// Verbosef reports detail shown only in verbose mode.
func (c *Console) Verbosef(format string, args ...any) { c.emit(LevelVerbose, format, args...) }

// Warnf reports a non-fatal finding such as a blocking mismatch.
func (c *Console) Warnf(format string, args ...any) { c.emit(LevelWarn, format, args...) }

// Errorf reports a failed command.
func (c *Console) Errorf(format string, args ...any) { c.emit(LevelError, format, args...) }

func (c *Console) Verbose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbose
}

func (c *Console) SetVerbose(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbose = v
}

// WriterSink writes results and verbose detail to Out, warnings and errors
// to Err, one message per line.
type WriterSink struct {
	Out io.Writer
	Err io.Writer

	warn  lipgloss.Style
	error lipgloss.Style
	color bool
}

func NewWriterSink(out, errOut io.Writer, colorEnabled bool) *WriterSink {
	r := lipgloss.NewRenderer(errOut)
	return &WriterSink{
		Out:   out,
		Err:   errOut,
		color: colorEnabled,
		warn: r.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true),
		error: r.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true),
	}
}

func (s *WriterSink) Emit(level Level, text string) {
	text = strings.TrimRight(text, "\n")
	switch level {
	case LevelWarn:
		if s.color {
			text = s.warn.Render(text)
		}
		fmt.Fprintln(s.Err, text)
	case LevelError:
		if s.color {
			text = s.error.Render(text)
		}
		fmt.Fprintln(s.Err, text)
	default:
		fmt.Fprintln(s.Out, text)
	}
}
