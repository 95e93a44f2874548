package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/birthpad/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds the screen for a navigation request. It returns nil for
// routes it does not know.
type Factory func(msg ui.RouterMsg) Screen

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack  []Screen
	build  Factory
	width  int
	height int
}

// New creates a router showing the main menu built by build.
func New(build Factory) *Router {
	r := &Router{build: build}
	if s := build(ui.RouterMsg{To: ui.RouteMainMenu}); s != nil {
		r.stack = []Screen{s}
	}
	return r
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.Current().Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (*Router, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.Open(msg)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Pop()
		}
	}

	if len(r.stack) == 0 {
		return r, nil
	}
	updated, cmd := r.Current().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return r, cmd
}

// Open builds the screen for msg. The main menu replaces the whole stack,
// every other route is pushed.
func (r *Router) Open(msg ui.RouterMsg) tea.Cmd {
	screen := r.build(msg)
	if screen == nil {
		return nil
	}
	if msg.To == ui.RouteMainMenu {
		r.stack = r.stack[:0]
	}
	return r.Push(screen)
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.Current().View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height
	if len(r.stack) > 0 {
		r.Current().SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]

	current := r.Current()
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}
