package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/shopspring/decimal"
)

// PriorityLevel is stored as its index, matching the other clients of the settings file.
type PriorityLevel int

const (
	PriorityFast PriorityLevel = iota
	PriorityTurbo
	PriorityUltra
)

func (l PriorityLevel) String() string {
	switch l {
	case PriorityFast:
		return "fast"
	case PriorityTurbo:
		return "turbo"
	case PriorityUltra:
		return "ultra"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParsePriorityLevel accepts a level name.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	for _, l := range []PriorityLevel{PriorityFast, PriorityTurbo, PriorityUltra} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown priority level: %s", s)
}

type PriorityMode int

const (
	// PriorityMaxCap caps the user's fee at the level's suggested fee.
	PriorityMaxCap PriorityMode = iota
	// PriorityExact always pays the user's fee.
	PriorityExact
)

func (m PriorityMode) String() string {
	if m == PriorityExact {
		return "exact"
	}
	return "maxcap"
}

// FeeConfig holds the suggested priority fee per level, in SOL.
type FeeConfig map[PriorityLevel]decimal.Decimal

var lamportsPerSOL = decimal.New(1, 9)

// FeeConfigFromLamports converts the backend's {m, h, vh} lamport values.
func FeeConfigFromLamports(m, h, vh int64) FeeConfig {
	return FeeConfig{
		PriorityFast:  decimal.NewFromInt(m).Div(lamportsPerSOL),
		PriorityTurbo: decimal.NewFromInt(h).Div(lamportsPerSOL),
		PriorityUltra: decimal.NewFromInt(vh).Div(lamportsPerSOL),
	}
}

// ResolvePriorityFee returns the fee in SOL to attach to a transaction.
// Exact mode returns userFee as is (nil when unset). MaxCap returns
// min(userFee, level fee), or the Turbo fee (0 when unknown) if either is missing.
func ResolvePriorityFee(mode PriorityMode, level PriorityLevel, userFee *decimal.Decimal, fees FeeConfig) *decimal.Decimal {
	if mode == PriorityExact {
		return userFee
	}
	levelFee, ok := fees[level]
	if !ok || userFee == nil {
		turbo := fees[PriorityTurbo]
		return &turbo
	}
	res := decimal.Min(*userFee, levelFee)
	return &res
}

// ComputeBudget describes the compute budget prefix of a transaction.
type ComputeBudget struct {
	UnitLimit uint32 // Number of compute units
	UnitPrice uint64 // Priority fee in micro-lamports per unit
	HeapSize  uint32 // Additional heap memory (optional)
}

// LaunchpadBudget is attached to every launchpad buy and sell.
var LaunchpadBudget = ComputeBudget{UnitLimit: 1_000_000, UnitPrice: 100_000}

// BudgetForFee spreads a total priority fee in SOL over limit units.
func BudgetForFee(feeSOL decimal.Decimal, limit uint32) ComputeBudget {
	if limit == 0 || !feeSOL.IsPositive() {
		return ComputeBudget{UnitLimit: limit}
	}
	micro := feeSOL.Mul(lamportsPerSOL).Mul(decimal.New(1, 6)).Div(decimal.NewFromInt(int64(limit)))
	return ComputeBudget{UnitLimit: limit, UnitPrice: uint64(micro.IntPart())}
}

// Instructions builds price first, then limit, then heap.
func (b ComputeBudget) Instructions() []solana.Instruction {
	var instructions []solana.Instruction

	if b.UnitPrice > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(b.UnitPrice).Build())
	}
	if b.UnitLimit > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(b.UnitLimit).Build())
	}
	if b.HeapSize > 0 {
		instructions = append(instructions, computebudget.NewRequestHeapFrameInstruction(b.HeapSize).Build())
	}
	return instructions
}
