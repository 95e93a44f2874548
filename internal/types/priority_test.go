package types

import (
	"testing"

	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestResolvePriorityFee(t *testing.T) {
	fees := FeeConfigFromLamports(1_000_000, 5_000_000, 20_000_000)

	tests := []struct {
		name  string
		mode  PriorityMode
		level PriorityLevel
		user  *decimal.Decimal
		fees  FeeConfig
		want  *decimal.Decimal
	}{
		{name: "exact returns user fee", mode: PriorityExact, level: PriorityUltra, user: dec("0.01"), fees: fees, want: dec("0.01")},
		{name: "exact without user fee", mode: PriorityExact, level: PriorityUltra, fees: fees},
		{name: "maxcap caps at level", mode: PriorityMaxCap, level: PriorityTurbo, user: dec("0.01"), fees: fees, want: dec("0.005")},
		{name: "maxcap keeps lower user fee", mode: PriorityMaxCap, level: PriorityUltra, user: dec("0.001"), fees: fees, want: dec("0.001")},
		{name: "maxcap without user fee uses turbo", mode: PriorityMaxCap, level: PriorityFast, fees: fees, want: dec("0.005")},
		{name: "nothing fetched", mode: PriorityMaxCap, level: PriorityFast, user: dec("0.01"), fees: FeeConfig{}, want: dec("0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePriorityFee(tt.mode, tt.level, tt.user, tt.fees)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestLaunchpadBudgetInstructions(t *testing.T) {
	ixs := LaunchpadBudget.Instructions()
	require.Len(t, ixs, 2)
	for _, ix := range ixs {
		assert.Equal(t, computebudget.ProgramID, ix.ProgramID())
	}
}

func TestBudgetForFee(t *testing.T) {
	// 0.001 SOL over 200k units = 5000 micro-lamports per unit
	b := BudgetForFee(decimal.RequireFromString("0.001"), 200_000)
	assert.Equal(t, uint64(5000), b.UnitPrice)
	assert.Equal(t, uint32(200_000), b.UnitLimit)

	assert.Zero(t, BudgetForFee(decimal.Zero, 200_000).UnitPrice)
}

func TestParsePriorityLevel(t *testing.T) {
	l, err := ParsePriorityLevel("ultra")
	require.NoError(t, err)
	assert.Equal(t, PriorityUltra, l)

	_, err = ParsePriorityLevel("extreme")
	assert.Error(t, err)
}
