package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/socktest/internal/engine"
	"github.com/pranshuparmar/socktest/internal/output"
)

type fakeExec struct {
	mu     sync.Mutex
	lines  []string
	prompt string
}

func (f *fakeExec) Execute(ctx context.Context, line string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	f.prompt = "select 1:  "
	return line == "quit"
}

func (f *fakeExec) Prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompt
}

type fakeInterrupter struct {
	causes []error
	begun  int
}

func (f *fakeInterrupter) Begin(parent context.Context) (context.Context, func()) {
	f.begun++
	return parent, func() {}
}

func (f *fakeInterrupter) Interrupt(cause error) bool {
	f.causes = append(f.causes, cause)
	return true
}

func newTestModel(t *testing.T) (MainModel, *fakeExec, *fakeInterrupter) {
	t.Helper()
	exec := &fakeExec{prompt: "blocking 0:  "}
	intr := &fakeInterrupter{}
	m := InitialModel(context.Background(), Options{Executor: exec, Interrupter: intr})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(MainModel), exec, intr
}

func update(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(MainModel), cmd
}

func scrollback(m MainModel) []string {
	var out []string
	for i := 0; i < m.lines.Length(); i++ {
		out = append(out, stripAnsi(m.lines.Get(i).(string)))
	}
	return out
}

func TestEnterRunsCommand(t *testing.T) {
	m, exec, intr := newTestModel(t)
	assert.Equal(t, "blocking 0:  ", m.input.Prompt)

	m.input.SetValue("socket -d inet")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"blocking 0:  socket -d inet"}, scrollback(m))

	done := cmd()
	m, cmd = update(t, m, done)
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, "select 1:  ", m.input.Prompt)
	assert.Equal(t, []string{"socket -d inet"}, exec.lines)
	assert.Equal(t, 1, intr.begun)
}

func TestEnterWhileBusy(t *testing.T) {
	m, exec, _ := newTestModel(t)
	m.busy = true
	m.input.SetValue("read")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.statusMsg)
	assert.Empty(t, exec.lines)
}

func TestBlankLineIsIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestCtrlCInterruptsRunningCommand(t *testing.T) {
	m, _, intr := newTestModel(t)
	m.busy = true

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Len(t, intr.causes, 1)
	assert.ErrorIs(t, intr.causes[0], engine.ErrUserInterrupt)
	assert.Equal(t, []string{"User interrupt received."}, scrollback(m))
}

func TestCtrlCIdleClearsInput(t *testing.T) {
	m, _, intr := newTestModel(t)
	m.input.SetValue("bind 80")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Empty(t, intr.causes)
	assert.Empty(t, m.input.Value())
}

func TestQuitPaths(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	m, _, _ = newTestModel(t)
	m.busy = true
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Nil(t, cmd)

	m, _, _ = newTestModel(t)
	m.input.SetValue("quit")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = update(t, m, cmd())
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestOutputIsStyledAndBounded(t *testing.T) {
	exec := &fakeExec{prompt: "blocking 0:  "}
	m := InitialModel(context.Background(), Options{Executor: exec, Interrupter: &fakeInterrupter{}, Scrollback: 3})

	m, _ = update(t, m, outputMsg{level: output.LevelInfo, text: "one\ntwo"})
	m, _ = update(t, m, outputMsg{level: output.LevelError, text: "three"})
	m, _ = update(t, m, outputMsg{level: output.LevelWarn, text: "four"})

	assert.Equal(t, []string{"two", "three", "four"}, scrollback(m))
}

func TestSinkHoldsOutputUntilAttached(t *testing.T) {
	var s Sink
	s.Emit(output.LevelWarn, "early")
	pending := s.attach(nil)
	require.Len(t, pending, 1)
	assert.Equal(t, "early", pending[0].text)
}

func TestViewShowsPromptAndState(t *testing.T) {
	m, _, _ := newTestModel(t)
	view := stripAnsi(m.View())
	assert.Contains(t, view, "socktest")
	assert.Contains(t, view, "ready")
	assert.True(t, strings.Contains(view, "blocking 0:"))
}
