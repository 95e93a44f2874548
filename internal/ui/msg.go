package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
	// Mint preselects a token on the trade screen.
	Mint string
}

// ToastMsg wraps a notification published on the events bus.
type ToastMsg struct {
	Toast events.ToastEvent
}

// TxStatusMsg carries a transaction lifecycle update.
type TxStatusMsg struct {
	Status events.TxStatusEvent
}

// PoolRefreshMsg asks the trade screen to reload the pool of Mint.
type PoolRefreshMsg struct {
	Mint string
}

// RPCChangedMsg is sent after the session switched RPC nodes.
type RPCChangedMsg struct {
	URL  string
	Name string
}

// LanguageChangedMsg is sent after the locale changed.
type LanguageChangedMsg struct {
	Lang string
	Dir  string
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// Route represents different screens in the application
type Route int

const (
	RouteMainMenu Route = iota
	RouteBuy
	RouteSell
	RouteCreate
	RouteSettings
	RouteHistory
	RouteTokens
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMainMenu:
		return "main_menu"
	case RouteBuy:
		return "buy"
	case RouteSell:
		return "sell"
	case RouteCreate:
		return "create"
	case RouteSettings:
		return "settings"
	case RouteHistory:
		return "history"
	case RouteTokens:
		return "tokens"
	default:
		return "unknown"
	}
}

// Path aliases accepted by ResolvePath.
var pathAliases = map[string]string{
	"/":      "/birthpad/",
	"/token": "/birthpad/token",
}

var pathRoutes = map[string]Route{
	"/birthpad/":         RouteMainMenu,
	"/birthpad/token":    RouteBuy,
	"/birthpad/create":   RouteCreate,
	"/birthpad/settings": RouteSettings,
	"/birthpad/history":  RouteHistory,
	"/birthpad/tokens":   RouteTokens,
}

// ResolvePath maps a launchpad path, with its legacy aliases, to a route.
// A "mint" query parameter is returned alongside the token route.
func ResolvePath(path string) (Route, string, bool) {
	var mint string
	if i := strings.IndexByte(path, '?'); i >= 0 {
		for _, kv := range strings.Split(path[i+1:], "&") {
			if v, ok := strings.CutPrefix(kv, "mint="); ok {
				mint = v
			}
		}
		path = path[:i]
	}
	if alias, ok := pathAliases[path]; ok {
		path = alias
	}
	r, ok := pathRoutes[path]
	return r, mint, ok
}

// Navigate returns a command that asks the app model to open route.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// FromEvent converts a bus event into the matching tea message.
func FromEvent(e events.Event) (tea.Msg, bool) {
	switch ev := e.(type) {
	case events.ToastEvent:
		return ToastMsg{Toast: ev}, true
	case events.TxStatusEvent:
		return TxStatusMsg{Status: ev}, true
	case events.PoolRefreshEvent:
		return PoolRefreshMsg{Mint: ev.Mint}, true
	case events.RPCChangedEvent:
		return RPCChangedMsg{URL: ev.URL, Name: ev.Name}, true
	case events.LanguageChangedEvent:
		return LanguageChangedMsg{Lang: ev.Lang, Dir: ev.Dir}, true
	default:
		return nil, false
	}
}
