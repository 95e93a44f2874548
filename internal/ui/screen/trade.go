package screen

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// DefaultMintDecimals is the precision of tokens minted by the launchpad.
const DefaultMintDecimals uint8 = 6

type quoteMsg struct {
	quote *launchpad.Quote
	err   error
}

type tradeDoneMsg struct {
	res *launchpad.TradeResult
	err error
}

// TradeScreen buys or sells one launchpad token.
type TradeScreen struct {
	frame

	sell    bool
	form    *component.Form
	busy    bool
	quote   *launchpad.Quote
	lastErr error
	lastSig string
}

// NewTradeScreen opens the buy (or sell) form, optionally for mint.
func NewTradeScreen(svc *ui.Services, sell bool, mint string) *TradeScreen {
	route := ui.RouteBuy
	if sell {
		route = ui.RouteSell
	}
	s := &TradeScreen{
		frame: newFrame(svc, route),
		sell:  sell,
	}

	s.form = component.NewForm().
		AddField("mint", component.FieldTypeText, "Token mint", true, "mint address").
		AddField("amount", component.FieldTypeNumber, s.amountLabel(), true, "").
		AddField("slippage", component.FieldTypeNumber, "Slippage %", false, "2.5").
		SetFieldValidation("mint", validateMint).
		SetFieldValidation("slippage", func(v string) error {
			_, err := settings.ParseSlippagePercent(v)
			return err
		})
	if mint != "" {
		s.form.SetFieldValue("mint", mint)
	}
	if svc != nil && svc.Prefs != nil {
		s.form.SetFieldValue("slippage", settings.FormatPercent(svc.Prefs.Slippage(settings.SlippageLaunchpad)))
	}
	return s
}

func validateMint(v string) error {
	if _, err := solana.PublicKeyFromBase58(v); err != nil {
		return errors.New("not a valid mint address")
	}
	return nil
}

func (s *TradeScreen) amountLabel() string {
	if s.sell {
		return "Amount (tokens)"
	}
	return "Amount (SOL)"
}

// Init initializes the trade screen
func (s *TradeScreen) Init() tea.Cmd {
	s.refreshStatus()
	return nil
}

// Update handles screen updates
func (s *TradeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := s.handle(msg); ok {
		return s, cmd
	}

	switch msg := msg.(type) {
	case quoteMsg:
		s.quote, s.lastErr = msg.quote, msg.err
		return s, nil

	case tradeDoneMsg:
		s.busy = false
		if msg.err != nil {
			s.lastErr = msg.err
			return s, nil
		}
		s.lastErr = nil
		s.lastSig = msg.res.Signature.String()
		return s, s.track(msg.res)

	case ui.PoolRefreshMsg:
		if msg.Mint == s.form.GetValue("mint") {
			return s, s.requestQuote()
		}
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Toggle):
			s.toggle()
			return s, s.requestQuote()
		case key.Matches(msg, s.keyMap.Submit):
			return s, s.submit()
		}
		prev := s.form.Focused()
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		// пересчитываем котировку при уходе с поля суммы
		if prev != s.form.Focused() && (prev == "amount" || prev == "mint") {
			return s, tea.Batch(cmd, s.requestQuote())
		}
		return s, cmd
	}
	return s, nil
}

func (s *TradeScreen) toggle() {
	s.sell = !s.sell
	s.route = ui.RouteBuy
	if s.sell {
		s.route = ui.RouteSell
	}
	s.quote = nil
	s.help.SetKeyBindings(s.keyMap.ContextualHelp(s.route))
	s.form.SetFieldLabel("amount", s.amountLabel())
}

// inputs parses the form. It does not touch the network.
func (s *TradeScreen) inputs() (launchpad.MintInfo, uint64, error) {
	mint, err := solana.PublicKeyFromBase58(s.form.GetValue("mint"))
	if err != nil {
		return launchpad.MintInfo{}, 0, errors.New("not a valid mint address")
	}
	info := launchpad.MintInfo{Mint: mint, Decimals: DefaultMintDecimals}
	if s.svc != nil && s.svc.Tokens != nil {
		if t, ok := s.svc.Tokens.Get(mint.String()); ok {
			info.Decimals = uint8(t.Decimals)
			info.Symbol = t.Symbol
		}
	}
	decimals := uint8(9) // SOL
	if s.sell {
		decimals = info.Decimals
	}
	amount, err := launchpad.FromUnits(s.form.GetValue("amount"), decimals)
	if err != nil {
		return info, 0, err
	}
	return info, amount, nil
}

func (s *TradeScreen) requestQuote() tea.Cmd {
	if s.svc == nil || s.svc.Launchpad == nil {
		return nil
	}
	info, amount, err := s.inputs()
	if err != nil {
		return nil
	}
	lp := s.svc.Launchpad
	sell := s.sell
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		var q *launchpad.Quote
		var err error
		if sell {
			q, err = lp.QuoteSell(ctx, info.Mint, launchpad.QuoteToken{}, amount)
		} else {
			q, err = lp.QuoteBuy(ctx, info.Mint, launchpad.QuoteToken{}, amount)
		}
		return quoteMsg{quote: q, err: err}
	}
}

func (s *TradeScreen) submit() tea.Cmd {
	if s.busy || !s.form.Validate() {
		return nil
	}
	info, amount, err := s.inputs()
	if err != nil {
		s.form.SetFieldError("amount", err)
		return nil
	}
	slippage, err := settings.ParseSlippagePercent(s.form.GetValue("slippage"))
	if err != nil {
		s.form.SetFieldError("slippage", err)
		return nil
	}
	if s.svc == nil || s.svc.Launchpad == nil {
		s.lastErr = errors.New("launchpad is not available")
		return nil
	}
	if s.svc.Prefs != nil {
		if err := s.svc.Prefs.SetSlippage(settings.SlippageLaunchpad, slippage); err != nil {
			s.logger().Warn("Failed to persist slippage", zap.Error(err))
		}
	}
	lp := s.svc.Launchpad
	lp.SetSlippage(slippage)
	s.refreshStatus()

	s.busy = true
	s.lastErr = nil
	sell := s.sell
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		var minOut uint64
		if sell {
			if q, err := lp.QuoteSell(ctx, info.Mint, launchpad.QuoteToken{}, amount); err == nil {
				minOut = q.MinOut
			}
			res, err := lp.Sell(ctx, launchpad.SellRequest{Mint: info, Amount: amount, MinAmountOut: minOut})
			return tradeDoneMsg{res: res, err: err}
		}
		if q, err := lp.QuoteBuy(ctx, info.Mint, launchpad.QuoteToken{}, amount); err == nil {
			minOut = q.MinOut
		}
		res, err := lp.Buy(ctx, launchpad.BuyRequest{Mint: info, Amount: amount, MinAmountOut: minOut})
		return tradeDoneMsg{res: res, err: err}
	}
}

// track waits for confirmation in the background. The outcome arrives on the
// events bus as a toast.
func (s *TradeScreen) track(res *launchpad.TradeResult) tea.Cmd {
	lp := s.svc.Launchpad
	logger := s.logger()
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		if err := lp.Track(ctx, res); err != nil {
			logger.Debug("Trade not confirmed", zap.String("signature", res.Signature.String()), zap.Error(err))
		}
		return nil
	}
}

// View renders the trade screen
func (s *TradeScreen) View() string {
	title := "Buy"
	if s.sell {
		title = "Sell"
	}
	body := s.form.View()

	switch {
	case s.busy:
		body += "\n" + style.InfoStyle.Render("Simulating and sending...")
	case s.lastErr != nil:
		body += "\n" + style.ErrorStyle.Render("✗ "+s.lastErr.Error())
	case s.lastSig != "":
		sent := style.BuyStyle
		if s.sell {
			sent = style.SellStyle
		}
		body += "\n" + sent.Render("Sent "+launchpad.ShortAddress(s.lastSig, 8))
	}
	if s.quote != nil {
		body += "\n" + style.InfoStyle.Render(s.quoteLine())
	}
	return s.render(title, body)
}

func (s *TradeScreen) quoteLine() string {
	outDecimals := uint8(9)
	unit := "SOL"
	if !s.sell {
		outDecimals = DefaultMintDecimals
		unit = "tokens"
		if info, _, err := s.inputs(); err == nil {
			outDecimals = info.Decimals
			if info.Symbol != "" {
				unit = info.Symbol
			}
		}
	}
	return fmt.Sprintf("≈ %s %s (min %s)",
		launchpad.ToUnits(s.quote.ExpectedOut, outDecimals).String(), unit,
		launchpad.ToUnits(s.quote.MinOut, outDecimals).String())
}

// SetSize sets the screen dimensions
func (s *TradeScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.form.SetWidth(style.FormWidth(width))
}
