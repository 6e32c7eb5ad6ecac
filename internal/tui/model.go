package tui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"

	"github.com/pranshuparmar/socktest/internal/output"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)

	verboseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bcbcbc")) // Light Gray
)

// DefaultScrollback is how many output lines the session keeps.
const DefaultScrollback = 1000

// Executor runs one command line and reports whether to quit.
type Executor interface {
	Execute(ctx context.Context, line string) bool
	Prompt() string
}

// Interrupter scopes each command's context.
type Interrupter interface {
	Begin(parent context.Context) (context.Context, func())
	Interrupt(cause error) bool
}

type Options struct {
	Executor    Executor
	Interrupter Interrupter
	Version     string
	Scrollback  int
	Log         *logrus.Entry
}

type outputMsg struct {
	level output.Level
	text  string
}

type doneMsg struct {
	quit   bool
	prompt string
}

type MainModel struct {
	input    textinput.Model
	viewport viewport.Model
	lines    *queue.Queue
	limit    int

	exec Executor
	intr Interrupter
	ctx  context.Context
	log  *logrus.Entry

	busy      bool
	statusMsg string // transient status shown in the footer
	width     int
	height    int
	quitting  bool
	version   string
}

func InitialModel(ctx context.Context, opts Options) MainModel {
	ti := textinput.New()
	ti.Placeholder = "help"
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Prompt = opts.Executor.Prompt()
	ti.PromptStyle = promptStyle
	ti.Focus()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	limit := opts.Scrollback
	if limit <= 0 {
		limit = DefaultScrollback
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}

	return MainModel{
		input:    ti,
		viewport: vp,
		lines:    queue.New(),
		limit:    limit,
		exec:     opts.Executor,
		intr:     opts.Interrupter,
		ctx:      ctx,
		log:      log,
		version:  opts.Version,
	}
}

// Sink forwards console output into a running program. Output emitted before
// the program starts is held until Start attaches it.
type Sink struct {
	mu      sync.Mutex
	p       *tea.Program
	pending []outputMsg
}

func (s *Sink) Emit(level output.Level, text string) {
	s.mu.Lock()
	p := s.p
	if p == nil {
		s.pending = append(s.pending, outputMsg{level: level, text: text})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	p.Send(outputMsg{level: level, text: text})
}

func (s *Sink) attach(p *tea.Program) []outputMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
	pending := s.pending
	s.pending = nil
	return pending
}

func (s *Sink) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = nil
}

// Start runs the interactive session until the operator quits or ctx ends.
func Start(ctx context.Context, opts Options, sink *Sink) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	m := InitialModel(ctx, opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	for _, msg := range sink.attach(p) {
		m.appendLine(msg.level, msg.text)
	}
	defer sink.detach()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return textinput.Blink
}
