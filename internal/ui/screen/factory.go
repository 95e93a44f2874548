package screen

import (
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
)

// Factory maps navigation requests to screens sharing svc.
func Factory(svc *ui.Services) router.Factory {
	return func(msg ui.RouterMsg) router.Screen {
		switch msg.To {
		case ui.RouteMainMenu:
			return NewMainMenuScreen(svc)
		case ui.RouteBuy:
			return NewTradeScreen(svc, false, msg.Mint)
		case ui.RouteSell:
			return NewTradeScreen(svc, true, msg.Mint)
		case ui.RouteCreate:
			return NewCreateScreen(svc)
		case ui.RouteSettings:
			return NewSettingsScreen(svc)
		case ui.RouteHistory:
			return NewHistoryScreen(svc)
		case ui.RouteTokens:
			return NewTokensScreen(svc)
		default:
			return nil
		}
	}
}
