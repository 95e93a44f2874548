package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/screen"
)

const bridgeBufferSize = 64

// appModel hosts the screen stack and keeps the bus bridge listening.
type appModel struct {
	router *router.Router
	bridge *ui.BusBridge
	width  int
	height int
}

func newAppModel(svc *ui.Services, bridge *ui.BusBridge) *appModel {
	return &appModel{
		router: router.New(screen.Factory(svc)),
		bridge: bridge,
	}
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.bridge.Listen())
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case ui.ToastMsg, ui.TxStatusMsg, ui.PoolRefreshMsg, ui.RPCChangedMsg, ui.LanguageChangedMsg:
		// пришло из моста: ждём следующее событие
		cmds = append(cmds, m.bridge.Listen())
	}

	var cmd tea.Cmd
	m.router, cmd = m.router.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal interface",
		Args:  cobra.NoArgs,
		RunE: run(envOptions{connect: true, trading: true}, func(ctx context.Context, _ *cobra.Command, e *env, _ []string) error {
			go func() {
				if err := e.prefs.Watch(ctx); err != nil {
					e.logger.Warn("Settings watcher stopped", zap.Error(err))
				}
			}()

			svc := &ui.Services{
				Ctx:       ctx,
				Logger:    e.logger,
				Launchpad: e.lp,
				Session:   e.session,
				Prefs:     e.prefs,
				Tokens:    e.tokens,
				History:   e.history,
				I18n:      e.i18n,
				Uploader:  e.uploader,
				Wallet:    e.wallet.Address(),
			}
			bridge := ui.NewBusBridge(e.bus, bridgeBufferSize, e.logger)
			defer bridge.Close()

			e.logger.Info("Starting TUI", zap.String("wallet", svc.Wallet.String()))
			runner := ui.NewRunner(e.logger, func() (tea.Model, []tea.ProgramOption) {
				return newAppModel(svc, bridge), []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
			})
			return runner.Run()
		}),
	}
}
