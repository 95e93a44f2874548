package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SlippageContext selects one of the independent slippage tolerances.
type SlippageContext string

const (
	SlippageSwap      SlippageContext = "swap"
	SlippageLiquidity SlippageContext = "liquidity"
	SlippageLaunchpad SlippageContext = "launchpad"
)

var (
	// MaxSlippagePercent bounds user input, in percent.
	MaxSlippagePercent = decimal.NewFromInt(50)
	// SlippagePresets are the quick-pick values offered next to custom input, in percent.
	SlippagePresets = []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.RequireFromString("2.5"),
		decimal.NewFromInt(5),
	}

	frontRunPercent = decimal.RequireFromString("2.5")
	mayFailPercent  = decimal.RequireFromString("0.5")

	defaultSlippage = map[SlippageContext]decimal.Decimal{
		SlippageSwap:      decimal.RequireFromString("0.005"),
		SlippageLiquidity: decimal.RequireFromString("0.025"),
		SlippageLaunchpad: decimal.RequireFromString("0.025"),
	}

	ErrSlippageRange = errors.New("slippage out of range")
)

// Key returns the storage key of the context.
func (c SlippageContext) Key() string {
	switch c {
	case SlippageSwap:
		return KeySwapSlippage
	case SlippageLiquidity:
		return KeyLiquiditySlippage
	default:
		return KeyLaunchpadSlippage
	}
}

// DefaultSlippage is the fraction used when nothing valid is stored.
func DefaultSlippage(c SlippageContext) decimal.Decimal {
	if v, ok := defaultSlippage[c]; ok {
		return v
	}
	return defaultSlippage[SlippageLaunchpad]
}

// Slippage returns the stored tolerance for c as a fraction (0.025 = 2.5%).
func (s *Store) Slippage(c SlippageContext) decimal.Decimal {
	raw, ok := s.Get(c.Key())
	if !ok || raw == "" {
		return DefaultSlippage(c)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return DefaultSlippage(c)
	}
	return v
}

// SetSlippage persists a fraction for c.
func (s *Store) SetSlippage(c SlippageContext, fraction decimal.Decimal) error {
	if fraction.IsNegative() || fraction.Mul(decimal.NewFromInt(100)).GreaterThan(MaxSlippagePercent) {
		return fmt.Errorf("%w: %s", ErrSlippageRange, fraction)
	}
	return s.Set(c.Key(), fraction.String())
}

// ParseSlippagePercent converts user input in percent to a fraction.
// Empty input means 0. At most two decimals are kept.
func ParseSlippagePercent(input string) (decimal.Decimal, error) {
	input = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), "%"))
	if input == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid slippage %q: %w", input, err)
	}
	if pct.IsNegative() || pct.GreaterThan(MaxSlippagePercent) {
		return decimal.Zero, fmt.Errorf("%w: %s%%", ErrSlippageRange, pct)
	}
	return pct.Truncate(2).Div(decimal.NewFromInt(100)), nil
}

// SlippageWarning classifies a tolerance for display.
type SlippageWarning int

const (
	SlippageOK SlippageWarning = iota
	// SlippageFrontRun: above 2.5%, the trade may be front-run.
	SlippageFrontRun
	// SlippageMayFail: below 0.5%, the trade may fail.
	SlippageMayFail
)

// CheckSlippage classifies a fraction.
func CheckSlippage(fraction decimal.Decimal) SlippageWarning {
	pct := fraction.Mul(decimal.NewFromInt(100))
	switch {
	case pct.GreaterThan(frontRunPercent):
		return SlippageFrontRun
	case pct.LessThan(mayFailPercent):
		return SlippageMayFail
	default:
		return SlippageOK
	}
}

// FormatPercent renders a fraction as a percent string, e.g. "2.5".
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).String()
}
