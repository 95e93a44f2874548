package ui

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ErrTooManyRestarts is returned once the UI crashed more than the limit.
var ErrTooManyRestarts = errors.New("UI crashed too many times")

// Runner restarts the TUI after a panic. A normal quit ends Run.
type Runner struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int
	restarts     int
	create       func() (tea.Model, []tea.ProgramOption)
}

// NewRunner creates a runner; create builds a fresh model for every start.
func NewRunner(logger *zap.Logger, create func() (tea.Model, []tea.ProgramOption)) *Runner {
	return &Runner{
		logger:       logger.Named("tui"),
		restartDelay: 2 * time.Second,
		maxRestarts:  3,
		create:       create,
	}
}

// Run blocks until the user quits or the restart limit is hit.
func (r *Runner) Run() error {
	for {
		err := r.runOnce()
		if err == nil {
			return nil
		}
		r.restarts++
		if r.restarts > r.maxRestarts {
			return fmt.Errorf("%w (%d): %v", ErrTooManyRestarts, r.maxRestarts, err)
		}
		// ошибка уходит и в sentry через core логгера
		r.logger.Error("UI crashed, restarting",
			zap.Error(err),
			zap.Int("restart", r.restarts),
			zap.Duration("delay", r.restartDelay))
		time.Sleep(r.restartDelay)
	}
}

// Restarts returns how many times the UI was restarted.
func (r *Runner) Restarts() int {
	return r.restarts
}

func (r *Runner) runOnce() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("UI panic: %v", p)
			r.logger.Error("UI panic recovered",
				zap.Any("panic", p),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	model, opts := r.create()
	if _, err := tea.NewProgram(NewSafeModel(model, r.logger), opts...).Run(); err != nil {
		// отмена контекста это штатный выход, а не сбой
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// SafeModel keeps a panicking Update or View from tearing down the terminal.
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
}

// NewSafeModel wraps model.
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	return &SafeModel{model: model, logger: logger}
}

func (m *SafeModel) Init() (cmd tea.Cmd) {
	defer m.recoverFrom("Init", &cmd)
	return m.model.Init()
}

func (m *SafeModel) Update(msg tea.Msg) (_ tea.Model, cmd tea.Cmd) {
	defer m.recoverFrom("Update", &cmd)
	m.model, cmd = m.model.Update(msg)
	return m, cmd
}

func (m *SafeModel) View() (view string) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("View panic recovered",
				zap.Any("panic", p),
				zap.String("stack", string(debug.Stack())))
			view = "UI error: view crashed. Press Ctrl+C to exit."
		}
	}()
	return m.model.View()
}

func (m *SafeModel) recoverFrom(method string, cmd *tea.Cmd) {
	if p := recover(); p != nil {
		m.logger.Error("UI method panic recovered",
			zap.String("method", method),
			zap.Any("panic", p),
			zap.String("stack", string(debug.Stack())))
		*cmd = nil
	}
}
