package screen

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

const (
	toastLimit = 3
	toastTTL   = 6 * time.Second
	// actionTimeout bounds one launchpad call started from a screen.
	actionTimeout = 2 * time.Minute
)

type pruneToastsMsg struct{}

func pruneAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pruneToastsMsg{} })
}

// frame is the chrome every screen shares: status header, notifications
// and the contextual help bar.
type frame struct {
	svc    *ui.Services
	keyMap ui.KeyMap
	route  ui.Route

	header *component.StatusHeader
	toasts *component.Toasts
	help   *component.HelpBar

	width  int
	height int
}

func newFrame(svc *ui.Services, route ui.Route) frame {
	keyMap := ui.DefaultKeyMap()
	f := frame{
		svc:    svc,
		keyMap: keyMap,
		route:  route,
		header: component.NewStatusHeader("🚀 Birthpad"),
		toasts: component.NewToasts(toastLimit, toastTTL),
		help:   component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(route)),
	}
	f.refreshStatus()
	return f
}

// refreshStatus copies the session state into the header.
func (f *frame) refreshStatus() {
	var st component.SessionStatus
	if f.svc == nil {
		f.header.SetStatus(st)
		return
	}
	if !f.svc.Wallet.IsZero() {
		st.Wallet = f.svc.Wallet.String()
	}
	if f.svc.Session != nil {
		s := f.svc.Session.State()
		st.RPCURL = s.RPCURL
		for _, n := range s.RPCs {
			if n.URL == s.RPCURL {
				st.RPCName = n.Name
			}
		}
		st.Fee = s.TransactionFee
		st.NeedRefresh = s.NeedRefresh
	}
	if f.svc.Prefs != nil {
		st.Slippage = settings.FormatPercent(f.svc.Prefs.Slippage(settings.SlippageLaunchpad)) + "%"
	}
	f.header.SetStatus(st)
}

// handle consumes the messages every screen reacts to the same way.
func (f *frame) handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ui.ToastMsg:
		f.toasts.Push(msg.Toast)
		return pruneAfter(toastTTL), true
	case pruneToastsMsg:
		f.toasts.Prune()
		return nil, true
	case ui.RPCChangedMsg, ui.LanguageChangedMsg:
		f.refreshStatus()
		return nil, true
	}
	return nil, false
}

func (f *frame) setSize(width, height int) {
	f.width = width
	f.height = height
	f.header.SetWidth(width)
	f.toasts.SetWidth(width - 4)
	f.help.SetWidth(width)
}

// actionContext is the context for one launchpad call.
func (f *frame) actionContext() (context.Context, context.CancelFunc) {
	parent := context.Background()
	if f.svc != nil && f.svc.Ctx != nil {
		parent = f.svc.Ctx
	}
	return context.WithTimeout(parent, actionTimeout)
}

func (f *frame) logger() *zap.Logger {
	if f.svc == nil || f.svc.Logger == nil {
		return zap.NewNop()
	}
	return f.svc.Logger
}

func (f *frame) t(key, fallback string) string {
	return f.svc.T(key, fallback)
}

func (f *frame) render(title, body string) string {
	if f.width == 0 || f.height == 0 {
		return "Loading..."
	}
	parts := []string{f.header.View(), style.BodyStyle.Render(style.TitleStyle.Render(title) + "\n" + body)}
	if toasts := f.toasts.View(); toasts != "" {
		parts = append(parts, style.BodyStyle.Render(toasts))
	}
	parts = append(parts, f.help.View())
	return strings.Join(parts, "\n")
}
