package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

const historyPageSize = 100

type historyLoadedMsg struct {
	txs []*models.Transaction
	err error
}

// HistoryScreen lists the wallet's launchpad transactions, newest first.
type HistoryScreen struct {
	frame

	table   *component.Table
	txs     []*models.Transaction
	loading bool
	lastErr error

	palette style.Palette
}

// NewHistoryScreen creates the transaction history screen.
func NewHistoryScreen(svc *ui.Services) *HistoryScreen {
	palette := style.DefaultPalette()
	return &HistoryScreen{
		frame: newFrame(svc, ui.RouteHistory),
		table: component.NewTable(
			component.TableColumn{Header: "Time", Width: 17},
			component.TableColumn{Header: "Action", Width: 8},
			component.TableColumn{Header: "Token"},
			component.TableColumn{Header: "Amount", Width: 24, Align: lipgloss.Right},
			component.TableColumn{Header: "Status", Width: 10},
			component.TableColumn{Header: "Signature", Width: 13},
		),
		palette: palette,
	}
}

// Init loads the first page.
func (s *HistoryScreen) Init() tea.Cmd {
	s.refreshStatus()
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	if s.svc == nil || s.svc.History == nil || s.svc.Wallet.IsZero() {
		return nil
	}
	s.loading = true
	history := s.svc.History
	wallet := s.svc.Wallet.String()
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		txs, err := history.ListTransactions(ctx, wallet, historyPageSize, 0)
		return historyLoadedMsg{txs: txs, err: err}
	}
}

// Update handles screen updates
func (s *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := s.handle(msg); ok {
		return s, cmd
	}

	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loading = false
		s.lastErr = msg.err
		if msg.err == nil {
			s.setTransactions(msg.txs)
		}
		return s, nil

	// статус меняется после подтверждения, перечитываем
	case ui.TxStatusMsg:
		return s, s.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Refresh):
			return s, s.load()
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		}
	}
	return s, nil
}

func (s *HistoryScreen) setTransactions(txs []*models.Transaction) {
	s.txs = txs
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, historyRow(tx))
	}
	s.table.SetRows(rows)
	for i, tx := range txs {
		switch tx.Status {
		case models.StatusFailed:
			s.table.SetRowColor(i, s.palette.Error)
		case models.StatusSent:
			s.table.SetRowColor(i, s.palette.Warning)
		}
	}
}

func historyRow(tx *models.Transaction) []string {
	token := tx.SymbolB
	if tx.Action == models.ActionSell {
		token = tx.SymbolA
	}
	if token == "" {
		token = launchpad.ShortAddress(tx.Mint, 4)
	}
	amount := tx.AmountA.String() + " " + tx.SymbolA
	if !tx.AmountB.IsZero() {
		amount += " → " + tx.AmountB.String() + " " + tx.SymbolB
	}
	return []string{
		tx.CreatedAt.Local().Format("2006-01-02 15:04"),
		strings.ToUpper(tx.Action),
		token,
		amount,
		tx.Status,
		launchpad.ShortAddress(tx.Signature, 5),
	}
}

// Selected returns the highlighted transaction.
func (s *HistoryScreen) Selected() *models.Transaction {
	i := s.table.SelectedIndex()
	if i < 0 || i >= len(s.txs) {
		return nil
	}
	return s.txs[i]
}

// View renders the history screen
func (s *HistoryScreen) View() string {
	var body string
	switch {
	case s.svc == nil || s.svc.Wallet.IsZero():
		body = style.MutedStyle.Render("No wallet loaded")
	case s.lastErr != nil:
		body = style.ErrorStyle.Render("✗ " + s.lastErr.Error())
	case s.loading && s.table.Len() == 0:
		body = style.MutedStyle.Render("Loading...")
	case s.table.Len() == 0:
		body = style.MutedStyle.Render(s.t("history.empty", "No transactions yet"))
	default:
		body = s.table.View()
		if tx := s.Selected(); tx != nil && tx.ErrorMessage != "" {
			body += "\n" + style.ErrorStyle.Render(tx.ErrorMessage)
		}
	}
	return s.render(s.t("history.title", "Transaction History"), body)
}

// SetSize sets the screen dimensions
func (s *HistoryScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.table.SetSize(width-4, height-8)
}
