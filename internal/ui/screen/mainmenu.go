package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MainMenuScreen represents the main menu screen
type MainMenuScreen struct {
	frame

	selectedIndex int
	menuItems     []MenuItem

	menuItemStyle    lipgloss.Style
	selectedStyle    lipgloss.Style
	descriptionStyle lipgloss.Style
}

// NewMainMenuScreen creates a new main menu screen
func NewMainMenuScreen(svc *ui.Services) *MainMenuScreen {
	palette := style.DefaultPalette()
	f := newFrame(svc, ui.RouteMainMenu)

	menuItems := []MenuItem{
		{
			Label:       "💰 " + f.t("launchpad.buy", "Buy"),
			Description: "Buy a token listed on the Birthpad",
			Route:       ui.RouteBuy,
		},
		{
			Label:       "💸 " + f.t("launchpad.sell", "Sell"),
			Description: "Sell a token back to its bonding curve",
			Route:       ui.RouteSell,
		},
		{
			Label:       "✏ " + f.t("launchpad.create_token", "Create Token"),
			Description: "Launch a new token with an optional initial buy",
			Route:       ui.RouteCreate,
		},
		{
			Label:       "🪙 " + f.t("common.tokens", "Tokens"),
			Description: "Browse the token list",
			Route:       ui.RouteTokens,
		},
		{
			Label:       "📜 " + f.t("common.history", "History"),
			Description: "Transactions sent from this wallet",
			Route:       ui.RouteHistory,
		},
		{
			Label:       "⚙ " + f.t("common.settings", "Settings"),
			Description: "Slippage, RPC node, fees and language",
			Route:       ui.RouteSettings,
		},
	}

	return &MainMenuScreen{
		frame:     f,
		menuItems: menuItems,

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		descriptionStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 4).
			Italic(true),
	}
}

// Init initializes the main menu screen
func (m *MainMenuScreen) Init() tea.Cmd {
	m.refreshStatus()
	return nil
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := m.handle(msg); ok {
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keyMap.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keyMap.Up):
		m.selectedIndex = (m.selectedIndex - 1 + len(m.menuItems)) % len(m.menuItems)
	case key.Matches(keyMsg, m.keyMap.Down):
		m.selectedIndex = (m.selectedIndex + 1) % len(m.menuItems)
	case key.Matches(keyMsg, m.keyMap.Enter):
		return m, ui.Navigate(m.menuItems[m.selectedIndex].Route)

	// Direct shortcuts
	case key.Matches(keyMsg, m.keyMap.Buy):
		return m, ui.Navigate(ui.RouteBuy)
	case key.Matches(keyMsg, m.keyMap.Sell):
		return m, ui.Navigate(ui.RouteSell)
	case key.Matches(keyMsg, m.keyMap.Create):
		return m, ui.Navigate(ui.RouteCreate)
	case key.Matches(keyMsg, m.keyMap.Settings):
		return m, ui.Navigate(ui.RouteSettings)
	case key.Matches(keyMsg, m.keyMap.History):
		return m, ui.Navigate(ui.RouteHistory)
	case key.Matches(keyMsg, m.keyMap.Tokens):
		return m, ui.Navigate(ui.RouteTokens)
	}
	return m, nil
}

// View renders the main menu screen
func (m *MainMenuScreen) View() string {
	items := make([]string, 0, len(m.menuItems)+1)
	for i, item := range m.menuItems {
		if i == m.selectedIndex {
			items = append(items, m.selectedStyle.Render(item.Label))
			items = append(items, m.descriptionStyle.Render(item.Description))
			continue
		}
		items = append(items, m.menuItemStyle.Render(item.Label))
	}

	menu := style.PanelStyle.Render(strings.Join(items, "\n"))

	return m.render("Launchpad", menu)
}

// SetSize sets the screen dimensions
func (m *MainMenuScreen) SetSize(width, height int) {
	m.setSize(width, height)
}

// SelectedRoute returns the currently selected route
func (m *MainMenuScreen) SelectedRoute() ui.Route {
	return m.menuItems[m.selectedIndex].Route
}
