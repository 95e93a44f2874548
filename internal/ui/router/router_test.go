package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/birthpad/internal/ui"
)

type stubScreen struct {
	name   string
	inits  int
	width  int
	height int
	seen   []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { s.inits++; return nil }

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.seen = append(s.seen, msg)
	return s, nil
}

func (s *stubScreen) View() string { return s.name }

func (s *stubScreen) SetSize(w, h int) { s.width, s.height = w, h }

func factory(built map[ui.Route]int) Factory {
	return func(msg ui.RouterMsg) Screen {
		if msg.To == ui.RouteTokens {
			return nil
		}
		built[msg.To]++
		return &stubScreen{name: msg.To.String() + ":" + msg.Mint}
	}
}

func TestRouterNavigation(t *testing.T) {
	built := map[ui.Route]int{}
	r := New(factory(built))
	require.Equal(t, 1, r.Depth())
	assert.Equal(t, "main_menu:", r.View())

	r.SetSize(100, 40)
	r, _ = r.Update(ui.RouterMsg{To: ui.RouteBuy, Mint: "ABC"})
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "buy:ABC", r.View())
	assert.Equal(t, 100, r.Current().(*stubScreen).width)

	// unknown route keeps the stack
	r, _ = r.Update(ui.RouterMsg{To: ui.RouteTokens})
	assert.Equal(t, 2, r.Depth())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "main_menu:", r.View())

	// esc on the root screen is forwarded
	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, r.Current().(*stubScreen).seen, 1)
}

func TestMainMenuReplacesStack(t *testing.T) {
	built := map[ui.Route]int{}
	r := New(factory(built))
	r.Open(ui.RouterMsg{To: ui.RouteCreate})
	r.Open(ui.RouterMsg{To: ui.RouteSettings})
	require.Equal(t, 3, r.Depth())

	r.Open(ui.RouterMsg{To: ui.RouteMainMenu})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 2, built[ui.RouteMainMenu])
}
