package launchpad

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
)

// FeeRateDenominator is the unit of every on-chain fee rate.
const FeeRateDenominator uint64 = 1_000_000

// Quote estimates a trade on the constant-product curve.
type Quote struct {
	AmountIn    uint64
	ExpectedOut uint64
	// MinOut is ExpectedOut reduced by the slippage bound.
	MinOut uint64
	Fee    uint64
}

// PoolInfo reads and decodes the pool of mintA/mintB.
func (s *Service) PoolInfo(ctx context.Context, mintA, mintB solana.PublicKey) (*program.PoolState, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}
	if mintB.IsZero() {
		mintB = solana.WrappedSol
	}
	acc, err := s.poolAccounts(mintA, mintB)
	if err != nil {
		return nil, err
	}
	info, err := client.GetAccountInfo(ctx, acc.Pool)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, acc.Pool)
	}
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", acc.Pool, err)
	}
	return program.DecodePool(info.Value.Data.GetBinary())
}

// QuoteBuy estimates how much of the base token amountIn of the quote token buys
// at the current slippage.
func (s *Service) QuoteBuy(ctx context.Context, mint solana.PublicKey, quote QuoteToken, amountIn uint64) (*Quote, error) {
	pool, feeRate, err := s.poolAndFee(ctx, mint, quote)
	if err != nil {
		return nil, err
	}
	return EstimateBuy(pool, feeRate, amountIn, s.State().Slippage)
}

// QuoteSell estimates the quote token received for amountIn of the base token.
func (s *Service) QuoteSell(ctx context.Context, mint solana.PublicKey, quote QuoteToken, amountIn uint64) (*Quote, error) {
	pool, feeRate, err := s.poolAndFee(ctx, mint, quote)
	if err != nil {
		return nil, err
	}
	return EstimateSell(pool, feeRate, amountIn, s.State().Slippage)
}

func (s *Service) poolAndFee(ctx context.Context, mint solana.PublicKey, quote QuoteToken) (*program.PoolState, uint64, error) {
	pool, err := s.PoolInfo(ctx, mint, quote.orDefault().Mint)
	if err != nil {
		return nil, 0, err
	}
	if pool.Status != program.PoolStatusTrading {
		return nil, 0, fmt.Errorf("pool %s is not trading (status %d)", mint, pool.Status)
	}
	cfg, err := s.GetConfigInfo(ctx, pool.ConfigID)
	if err != nil {
		return nil, 0, err
	}
	return pool, cfg.TradeFeeRate + DefaultShareFeeRate, nil
}

// EstimateBuy applies the fee to the input and swaps the rest against the
// virtual plus real reserves.
func EstimateBuy(pool *program.PoolState, feeRate, amountIn uint64, slippage decimal.Decimal) (*Quote, error) {
	if pool.VirtualA < pool.RealA {
		return nil, fmt.Errorf("pool reserves are inconsistent")
	}
	fee := feeOf(amountIn, feeRate)
	net := amountIn - fee
	out, err := swapOut(u128(net), quoteReserve(pool), u128(pool.VirtualA-pool.RealA))
	if err != nil {
		return nil, err
	}
	return &Quote{AmountIn: amountIn, ExpectedOut: out, MinOut: MinOut(out, slippage), Fee: fee}, nil
}

// EstimateSell swaps the full input and takes the fee from the output.
func EstimateSell(pool *program.PoolState, feeRate, amountIn uint64, slippage decimal.Decimal) (*Quote, error) {
	if pool.VirtualA < pool.RealA {
		return nil, fmt.Errorf("pool reserves are inconsistent")
	}
	gross, err := swapOut(u128(amountIn), u128(pool.VirtualA-pool.RealA), quoteReserve(pool))
	if err != nil {
		return nil, err
	}
	fee := feeOf(gross, feeRate)
	out := gross - fee
	return &Quote{AmountIn: amountIn, ExpectedOut: out, MinOut: MinOut(out, slippage), Fee: fee}, nil
}

// MinOut lowers amount by the slippage fraction, rounding down.
func MinOut(amount uint64, slippage decimal.Decimal) uint64 {
	if slippage.IsNegative() {
		slippage = decimal.Zero
	}
	if slippage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return 0
	}
	keep := decimal.NewFromInt(1).Sub(slippage)
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).Mul(keep).Floor().BigInt().Uint64()
}

// ErrQuoteOverflow is returned when an estimate does not fit in u64.
var ErrQuoteOverflow = errors.New("quote overflows u64")

func u128(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// quoteReserve is VirtualB+RealB; a corrupt account may push it past u64.
func quoteReserve(pool *program.PoolState) *big.Int {
	return new(big.Int).Add(u128(pool.VirtualB), u128(pool.RealB))
}

// swapOut is in*reserveOut/(reserveIn+in).
func swapOut(in, reserveIn, reserveOut *big.Int) (uint64, error) {
	if in.Sign() == 0 {
		return 0, nil
	}
	num := new(big.Int).Mul(in, reserveOut)
	den := new(big.Int).Add(reserveIn, in)
	out := num.Quo(num, den)
	if !out.IsUint64() {
		return 0, ErrQuoteOverflow
	}
	return out.Uint64(), nil
}

// feeOf rounds up.
func feeOf(amount, rate uint64) uint64 {
	if rate >= FeeRateDenominator {
		return amount
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(rate))
	den := new(big.Int).SetUint64(FeeRateDenominator)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Uint64()
}
