package screen

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/tokens"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// TokensScreen shows the display token list; enter opens the buy form.
type TokensScreen struct {
	frame

	table *component.Table
	list  []tokens.Token
}

// NewTokensScreen creates the token list screen.
func NewTokensScreen(svc *ui.Services) *TokensScreen {
	s := &TokensScreen{
		frame: newFrame(svc, ui.RouteTokens),
		table: component.NewTable(
			component.TableColumn{Header: "Symbol", Width: 10},
			component.TableColumn{Header: "Name"},
			component.TableColumn{Header: "Mint", Width: 13},
			component.TableColumn{Header: "Dec", Width: 5, Align: lipgloss.Right},
			component.TableColumn{Header: "Source", Width: 10},
		),
	}
	s.reload()
	return s
}

func (s *TokensScreen) reload() {
	if s.svc == nil || s.svc.Tokens == nil {
		return
	}
	display := settings.DefaultDisplayTokenSettings()
	if s.svc.Prefs != nil {
		display = s.svc.Prefs.DisplayTokenSettings()
	}
	s.list = s.svc.Tokens.Display(display)
	rows := make([][]string, 0, len(s.list))
	for _, t := range s.list {
		rows = append(rows, []string{
			t.Symbol,
			t.Name,
			launchpad.ShortAddress(t.Address, 5),
			strconv.Itoa(t.Decimals),
			t.Type,
		})
	}
	s.table.SetRows(rows)
}

// Init initializes the tokens screen
func (s *TokensScreen) Init() tea.Cmd {
	s.refreshStatus()
	s.reload()
	return nil
}

// Update handles screen updates
func (s *TokensScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := s.handle(msg); ok {
		return s, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		case key.Matches(msg, s.keyMap.Refresh):
			s.reload()
		case key.Matches(msg, s.keyMap.Enter), key.Matches(msg, s.keyMap.Buy):
			if mint := s.SelectedMint(); mint != "" {
				return s, func() tea.Msg { return ui.RouterMsg{To: ui.RouteBuy, Mint: mint} }
			}
		case key.Matches(msg, s.keyMap.Sell):
			if mint := s.SelectedMint(); mint != "" {
				return s, func() tea.Msg { return ui.RouterMsg{To: ui.RouteSell, Mint: mint} }
			}
		}
	}
	return s, nil
}

// SelectedMint returns the mint of the highlighted row.
func (s *TokensScreen) SelectedMint() string {
	i := s.table.SelectedIndex()
	if i < 0 || i >= len(s.list) {
		return ""
	}
	return s.list[i].Address
}

// View renders the tokens screen
func (s *TokensScreen) View() string {
	body := s.table.View()
	if s.table.Len() == 0 {
		body = style.MutedStyle.Render("Token list is empty")
	}
	return s.render(s.t("tokens.title", "Tokens"), body)
}

// SetSize sets the screen dimensions
func (s *TokensScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.table.SetSize(width-4, height-8)
}
