package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/pranshuparmar/socktest/internal/engine"
	"github.com/pranshuparmar/socktest/internal/output"
)

// echoLevel marks the operator's own input in the scrollback.
const echoLevel output.Level = -1

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 0)
		// title, border, input line, footer
		m.viewport.Height = max(msg.Height-7, 0)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-6, 10)
		m.refresh()
		return m, nil

	case outputMsg:
		m.appendLine(msg.level, msg.text)
		m.refresh()
		return m, nil

	case doneMsg:
		m.busy = false
		m.statusMsg = ""
		m.input.Prompt = msg.prompt
		if msg.quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.appendLine(output.LevelInfo, "User interrupt received.")
			if m.busy {
				m.intr.Interrupt(engine.ErrUserInterrupt)
			} else {
				m.input.Reset()
			}
			m.refresh()
			return m, nil

		case "ctrl+d":
			if m.busy || m.input.Value() != "" {
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		case "enter":
			if m.busy {
				m.statusMsg = "A command is still running (ctrl+c interrupts it)"
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			m.appendLine(echoLevel, m.input.Prompt+line)
			m.refresh()
			m.busy = true
			m.statusMsg = ""
			return m, m.run(line)
		}

		if !m.busy {
			m.input, cmd = m.input.Update(msg)
		}
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run executes line off the UI goroutine.
func (m MainModel) run(line string) tea.Cmd {
	exec, intr, parent := m.exec, m.intr, m.ctx
	return func() tea.Msg {
		ctx, done := intr.Begin(parent)
		defer done()
		quit := exec.Execute(ctx, line)
		return doneMsg{quit: quit, prompt: exec.Prompt()}
	}
}

func (m MainModel) appendLine(level output.Level, text string) {
	kind := level.String()
	if level == echoLevel {
		kind = "input"
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		m.log.WithField("kind", kind).Debug(stripAnsi(line))
		switch level {
		case output.LevelError:
			line = errorStyle.Render(line)
		case output.LevelWarn:
			line = warnStyle.Render(line)
		case output.LevelVerbose:
			line = verboseStyle.Render(line)
		case echoLevel:
			line = promptStyle.Render(line)
		}
		m.lines.Add(line)
		for m.lines.Length() > m.limit {
			m.lines.Remove()
		}
	}
}

// refresh re-renders the scrollback into the viewport, following the tail.
func (m *MainModel) refresh() {
	var b strings.Builder
	for i := 0; i < m.lines.Length(); i++ {
		line := m.lines.Get(i).(string)
		if m.viewport.Width > 0 {
			line = wrap.String(line, m.viewport.Width)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	m.viewport.GotoBottom()
}
