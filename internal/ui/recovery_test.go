package ui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type panicModel struct {
	onInit, onUpdate, onView bool
	quit                     bool
}

func (m *panicModel) Init() tea.Cmd {
	if m.onInit {
		panic("init")
	}
	if m.quit {
		return tea.Quit
	}
	return nil
}

func (m *panicModel) Update(tea.Msg) (tea.Model, tea.Cmd) {
	if m.onUpdate {
		panic("update")
	}
	return m, tea.Quit
}

func (m *panicModel) View() string {
	if m.onView {
		panic("view")
	}
	return "ok"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler()}
}

func TestSafeModelRecovers(t *testing.T) {
	logger := zaptest.NewLogger(t)

	m := NewSafeModel(&panicModel{onInit: true}, logger)
	assert.NotPanics(t, func() { assert.Nil(t, m.Init()) })

	m = NewSafeModel(&panicModel{onUpdate: true}, logger)
	var cmd tea.Cmd
	assert.NotPanics(t, func() { _, cmd = m.Update(nil) })
	assert.Nil(t, cmd)

	m = NewSafeModel(&panicModel{onView: true}, logger)
	assert.Contains(t, m.View(), "view crashed")

	m = NewSafeModel(&panicModel{}, logger)
	assert.Equal(t, "ok", m.View())
	next, cmd := m.Update(nil)
	assert.Same(t, m, next)
	assert.NotNil(t, cmd)
}

func TestRunnerRestartsAfterPanic(t *testing.T) {
	calls := 0
	r := NewRunner(zaptest.NewLogger(t), func() (tea.Model, []tea.ProgramOption) {
		calls++
		if calls == 1 {
			panic("first start")
		}
		return &panicModel{quit: true}, headless()
	})
	r.restartDelay = time.Millisecond

	require.NoError(t, r.Run())
	assert.Equal(t, 1, r.Restarts())
	assert.Equal(t, 2, calls)
}

func TestRunnerGivesUp(t *testing.T) {
	r := NewRunner(zaptest.NewLogger(t), func() (tea.Model, []tea.ProgramOption) {
		panic("always")
	})
	r.restartDelay = time.Millisecond
	r.maxRestarts = 2

	err := r.Run()
	require.ErrorIs(t, err, ErrTooManyRestarts)
	assert.Equal(t, 3, r.Restarts())
}
