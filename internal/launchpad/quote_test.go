package launchpad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
)

func curvePool() *program.PoolState {
	return &program.PoolState{
		Discriminator: program.PoolStateDiscriminator,
		Status:        program.PoolStatusTrading,
		VirtualA:      1_000_000,
		VirtualB:      1000,
	}
}

func TestEstimateBuy(t *testing.T) {
	q, err := EstimateBuy(curvePool(), 10000, 100, decimal.RequireFromString("0.025"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), q.Fee)
	assert.Equal(t, uint64(90081), q.ExpectedOut)
	assert.Equal(t, uint64(87828), q.MinOut)
}

func TestEstimateSell(t *testing.T) {
	q, err := EstimateSell(curvePool(), 10000, 90081, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), q.Fee)
	assert.Equal(t, uint64(81), q.ExpectedOut)
	assert.Equal(t, q.ExpectedOut, q.MinOut)
}

func TestEstimateRejectsBrokenReserves(t *testing.T) {
	pool := curvePool()
	pool.RealA = pool.VirtualA + 1
	_, err := EstimateBuy(pool, 0, 10, decimal.Zero)
	assert.Error(t, err)
}

func TestEstimateQuoteReserveBeyondU64(t *testing.T) {
	pool := curvePool()
	pool.VirtualA = 1_000_000_000
	pool.VirtualB = math.MaxUint64
	pool.RealB = 10

	// сумма резервов не должна переполняться и отдавать почти весь пул
	q, err := EstimateBuy(pool, 0, 1_000_000_000, decimal.Zero)
	require.NoError(t, err)
	assert.Zero(t, q.ExpectedOut)

	pool.VirtualA, pool.RealA = 1, 0
	_, err = EstimateSell(pool, 0, math.MaxUint64, decimal.Zero)
	assert.ErrorIs(t, err, ErrQuoteOverflow)
}

func TestMinOut(t *testing.T) {
	assert.Equal(t, uint64(975), MinOut(1000, decimal.RequireFromString("0.025")))
	assert.Equal(t, uint64(1000), MinOut(1000, decimal.NewFromInt(-1)))
	assert.Zero(t, MinOut(1000, decimal.NewFromInt(1)))
	assert.Zero(t, MinOut(0, decimal.Zero))
}

func TestQuoteBuyReadsPoolAndConfig(t *testing.T) {
	f := newFixture(t)
	mint := solana.NewWallet().PublicKey()
	configID := solana.NewWallet().PublicKey()

	pool := curvePool()
	pool.ConfigID = configID
	pool.MintA = mint
	pool.MintB = solana.WrappedSol
	addr, err := program.PoolPDA(program.DefaultProgramID, mint, solana.WrappedSol)
	require.NoError(t, err)
	raw, err := program.Encode(pool)
	require.NoError(t, err)
	f.chain.accounts[addr] = raw

	raw, err = program.Encode(&program.GlobalConfig{Discriminator: program.GlobalConfigDiscriminator, MintB: solana.WrappedSol})
	require.NoError(t, err)
	f.chain.accounts[configID] = raw

	q, err := f.svc.QuoteBuy(context.Background(), mint, QuoteToken{}, 100)
	require.NoError(t, err)
	// только доля реферала
	assert.Equal(t, uint64(90081), q.ExpectedOut)
	assert.Equal(t, uint64(87828), q.MinOut)
}

func TestQuoteWithoutPool(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.QuoteSell(context.Background(), solana.NewWallet().PublicKey(), QuoteToken{}, 1)
	assert.True(t, errors.Is(err, ErrPoolNotFound))
}
