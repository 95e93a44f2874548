package ui

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/app"
	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
	"github.com/rovshanmuradov/birthpad/internal/tokens"
	"github.com/rovshanmuradov/birthpad/internal/types"
	"github.com/rovshanmuradov/birthpad/internal/upload"
)

// Launchpad is what the trade and create screens call.
type Launchpad interface {
	Buy(ctx context.Context, req launchpad.BuyRequest) (*launchpad.TradeResult, error)
	Sell(ctx context.Context, req launchpad.SellRequest) (*launchpad.TradeResult, error)
	Track(ctx context.Context, res *launchpad.TradeResult) error
	QuoteBuy(ctx context.Context, mint solana.PublicKey, quote launchpad.QuoteToken, amountIn uint64) (*launchpad.Quote, error)
	QuoteSell(ctx context.Context, mint solana.PublicKey, quote launchpad.QuoteToken, amountIn uint64) (*launchpad.Quote, error)
	CreateAndBuy(ctx context.Context, req launchpad.CreateRequest) (*launchpad.CreateResult, error)
	SetSlippage(fraction decimal.Decimal)
}

// Session exposes the connection state shown in headers.
type Session interface {
	State() app.State
	SetRPCURL(ctx context.Context, url string, skipToast, skipError bool) bool
	SetTransactionFee(fee string) error
	SetPriority(level types.PriorityLevel, mode types.PriorityMode) error
}

// History lists recorded transactions.
type History interface {
	ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error)
}

// Translator looks up UI strings.
type Translator interface {
	T(key string, vars map[string]string) string
	Language() string
	ChangeLanguage(lang string) (bool, error)
}

// Services is handed to every screen.
type Services struct {
	Ctx       context.Context
	Logger    *zap.Logger
	Launchpad Launchpad
	Session   Session
	Prefs     *settings.Store
	Tokens    *tokens.Store
	History   History
	I18n      Translator
	Uploader  upload.Uploader
	Wallet    solana.PublicKey
}

// T translates key, falling back to fallback when no translator is set or the
// key is missing.
func (s *Services) T(key, fallback string) string {
	if s == nil || s.I18n == nil {
		return fallback
	}
	if v := s.I18n.T(key, nil); v != "" && v != key {
		return v
	}
	return fallback
}
