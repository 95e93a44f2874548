package launchpad

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

// Actions
const (
	ActionBuy    = "buy"
	ActionSell   = "sell"
	ActionCreate = "create"
)

// TxMeta is the human-readable description of a launchpad transaction.
type TxMeta struct {
	Action  string
	AmountA decimal.Decimal
	SymbolA string
	AmountB decimal.Decimal
	SymbolB string
}

// ToUnits converts a raw amount to token units.
func ToUnits(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// FromUnits parses a token amount such as "0.5" into raw units. Digits past
// the token's precision are truncated.
func FromUnits(amount string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	raw := d.Shift(int32(decimals)).Truncate(0).BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s is too large", amount)
	}
	return raw.Uint64(), nil
}

// ShortAddress keeps the first and last n characters.
func ShortAddress(addr string, n int) string {
	if len(addr) <= 2*n {
		return addr
	}
	return addr[:n] + "..." + addr[len(addr)-n:]
}

func (m TxMeta) Title() string {
	switch m.Action {
	case ActionBuy:
		return "Buy " + m.SymbolA
	case ActionSell:
		return "Sell " + m.SymbolA
	default:
		return "Create " + m.SymbolA
	}
}

func (m TxMeta) Summary() string {
	switch m.Action {
	case ActionBuy:
		return fmt.Sprintf("Buy %s %s with %s %s", m.AmountA, m.SymbolA, m.AmountB, m.SymbolB)
	case ActionSell:
		return fmt.Sprintf("Sell %s %s for %s %s", m.AmountA, m.SymbolA, m.AmountB, m.SymbolB)
	default:
		if m.AmountB.IsPositive() {
			return fmt.Sprintf("Create %s and buy with %s %s", m.SymbolA, m.AmountB, m.SymbolB)
		}
		return "Create " + m.SymbolA
	}
}

func (m TxMeta) event() events.TxMeta {
	return events.TxMeta{Action: m.Action, Title: m.Title(), Summary: m.Summary()}
}
