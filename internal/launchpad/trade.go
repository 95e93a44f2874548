package launchpad

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
	"github.com/rovshanmuradov/birthpad/internal/types"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// ErrPoolNotFound means the mint has no launchpad pool.
var ErrPoolNotFound = errors.New("pool not found")

// DefaultShareFeeRate is the referral share sent with every trade (1%).
const DefaultShareFeeRate uint64 = 10000

// MintInfo describes the base token.
type MintInfo struct {
	Mint     solana.PublicKey
	Decimals uint8
	Symbol   string
}

func (m MintInfo) symbol() string {
	if m.Symbol != "" {
		return m.Symbol
	}
	return ShortAddress(m.Mint.String(), 5)
}

// QuoteToken is mintB. The zero value means wrapped SOL.
type QuoteToken struct {
	Mint     solana.PublicKey
	Decimals uint8
	Symbol   string
}

func (q QuoteToken) orDefault() QuoteToken {
	if q.Mint.IsZero() {
		return QuoteToken{Mint: solana.WrappedSol, Decimals: 9, Symbol: "SOL"}
	}
	if q.Symbol == "" {
		q.Symbol = ShortAddress(q.Mint.String(), 5)
	}
	return q
}

// BuyRequest spends Amount of the quote token (raw units).
type BuyRequest struct {
	Mint         MintInfo
	Quote        QuoteToken
	Amount       uint64
	MinAmountOut uint64
}

// SellRequest sells Amount of the base token (raw units).
type SellRequest struct {
	Mint         MintInfo
	Quote        QuoteToken
	Amount       uint64
	MinAmountOut uint64
}

// TradeResult is returned once the transaction is sent.
type TradeResult struct {
	Signature  solana.Signature
	PlatformID solana.PublicKey
	Attempts   []Attempt
	Meta       TxMeta
}

// tradePrep holds the reads shared by buy and sell.
type tradePrep struct {
	userTokenA solana.PublicKey
	userTokenB solana.PublicKey
	createA    solana.Instruction
	createB    solana.Instruction
	blockhash  solana.Hash
	pool       *program.PoolState
}

// ataInstruction returns the owner's ATA and a create instruction when it is missing.
func ataInstruction(ctx context.Context, client blockchain.Client, owner, mint solana.PublicKey) (solana.PublicKey, solana.Instruction, error) {
	ata, err := wallet.FindATA(owner, mint, solana.TokenProgramID)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("derive ATA for %s: %w", mint, err)
	}
	_, err = client.GetAccountInfo(ctx, ata)
	switch {
	case errors.Is(err, blockchain.ErrAccountNotFound):
		return ata, wallet.CreateAssociatedTokenAccountIdempotentInstruction(owner, owner, mint, solana.TokenProgramID), nil
	case err != nil:
		return solana.PublicKey{}, nil, fmt.Errorf("check ATA %s: %w", ata, err)
	}
	return ata, nil, nil
}

// prepareTrade reads both token accounts, the blockhash and the pool in parallel.
func (s *Service) prepareTrade(ctx context.Context, client blockchain.Client, owner solana.PublicKey, acc *program.PoolAccounts) (*tradePrep, error) {
	var p tradePrep
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		p.userTokenA, p.createA, err = ataInstruction(gctx, client, owner, acc.MintA)
		return err
	})
	g.Go(func() error {
		var err error
		p.userTokenB, p.createB, err = ataInstruction(gctx, client, owner, acc.MintB)
		return err
	})
	g.Go(func() error {
		var err error
		p.blockhash, err = client.GetRecentBlockhash(gctx)
		if err != nil {
			return fmt.Errorf("get blockhash: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		info, err := client.GetAccountInfo(gctx, acc.Pool)
		if errors.Is(err, blockchain.ErrAccountNotFound) {
			return fmt.Errorf("%w: %s. The token may not be listed on the Birthpad yet", ErrPoolNotFound, acc.Pool)
		}
		if err != nil {
			return fmt.Errorf("get pool %s: %w", acc.Pool, err)
		}
		p.pool, err = program.DecodePool(info.Value.Data.GetBinary())
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}

// tradeAccounts fills everything except the platform id.
func (s *Service) tradeAccounts(owner solana.PublicKey, acc *program.PoolAccounts, p *tradePrep) (program.TradeAccounts, error) {
	platformVault, err := program.PlatformVaultPDA(s.programID, p.pool.PlatformID, acc.MintB)
	if err != nil {
		return program.TradeAccounts{}, fmt.Errorf("derive platform vault: %w", err)
	}
	creatorVault, err := program.CreatorVaultPDA(s.programID, p.pool.Creator, acc.MintB)
	if err != nil {
		return program.TradeAccounts{}, fmt.Errorf("derive creator vault: %w", err)
	}
	shareATA, err := wallet.FindATA(owner, acc.MintB, solana.TokenProgramID)
	if err != nil {
		return program.TradeAccounts{}, fmt.Errorf("derive share ATA: %w", err)
	}
	return program.TradeAccounts{
		PoolAccounts:  acc,
		Owner:         owner,
		UserTokenA:    p.userTokenA,
		UserTokenB:    p.userTokenB,
		TokenProgramA: solana.TokenProgramID,
		TokenProgramB: solana.TokenProgramID,
		PlatformVault: platformVault,
		CreatorVault:  creatorVault,
		ShareATA:      shareATA,
	}, nil
}

func (s *Service) poolAccounts(mintA, mintB solana.PublicKey) (*program.PoolAccounts, error) {
	acc, err := program.DerivePoolAccounts(s.programID, mintA, mintB, 0, 0)
	if err != nil {
		return nil, err
	}
	// глобальный конфиг всегда SOL/curve 0/index 0
	if acc.Config, err = program.ConfigPDA(s.programID, solana.WrappedSol, 0, 0); err != nil {
		return nil, err
	}
	return acc, nil
}

// Buy spends req.Amount of the quote token on the base token, trying each
// platform id candidate until one simulates.
func (s *Service) Buy(ctx context.Context, req BuyRequest) (*TradeResult, error) {
	res, err := s.buy(ctx, req)
	if err != nil {
		s.logger.Error("Buy token error", zap.String("mint", req.Mint.Mint.String()), zap.Error(err))
		s.toast(events.StatusError, "Buy Error", err.Error(), err)
		return nil, err
	}
	return res, nil
}

func (s *Service) buy(ctx context.Context, req BuyRequest) (*TradeResult, error) {
	signer, err := s.currentSigner()
	if err != nil {
		return nil, err
	}
	client, err := s.client()
	if err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, errors.New("buy amount must be positive")
	}
	quote := req.Quote.orDefault()
	owner := signer.Address()

	acc, err := s.poolAccounts(req.Mint.Mint, quote.Mint)
	if err != nil {
		return nil, err
	}
	prep, err := s.prepareTrade(ctx, client, owner, acc)
	if err != nil {
		return nil, err
	}

	base := types.LaunchpadBudget.Instructions()
	if prep.createA != nil {
		base = append(base, prep.createA)
	}
	if prep.createB != nil {
		base = append(base, prep.createB)
	}
	if quote.Mint.Equals(solana.WrappedSol) {
		base = append(base,
			system.NewTransferInstruction(req.Amount, owner, prep.userTokenB).Build(),
			token.NewSyncNativeInstruction(prep.userTokenB).Build(),
		)
	}

	accounts, err := s.tradeAccounts(owner, acc, prep)
	if err != nil {
		return nil, err
	}
	args := program.TradeArgs{Amount: req.Amount, MinimumOut: req.MinAmountOut, ShareFeeRate: DefaultShareFeeRate}

	sub, err := s.submitFirstSimulatable(ctx, client, signer, ActionBuy, base, prep.blockhash,
		s.candidates.For(req.Mint.Mint.String()),
		func(pid solana.PublicKey) (solana.Instruction, error) {
			a := accounts
			a.PlatformID = pid
			return program.NewBuyExactInInstruction(a, args)
		})
	if err != nil {
		return nil, err
	}

	meta := TxMeta{
		Action:  ActionBuy,
		AmountA: ToUnits(req.MinAmountOut, req.Mint.Decimals),
		SymbolA: req.Mint.symbol(),
		AmountB: ToUnits(req.Amount, quote.Decimals),
		SymbolB: quote.Symbol,
	}
	return s.sent(ctx, owner, req.Mint.Mint, sub, meta), nil
}

// Sell sells req.Amount of the base token.
func (s *Service) Sell(ctx context.Context, req SellRequest) (*TradeResult, error) {
	res, err := s.sell(ctx, req)
	if err != nil {
		s.logger.Error("Sell token error", zap.String("mint", req.Mint.Mint.String()), zap.Error(err))
		s.toast(events.StatusError, "Sell Error", err.Error(), err)
		return nil, err
	}
	return res, nil
}

func (s *Service) sell(ctx context.Context, req SellRequest) (*TradeResult, error) {
	signer, err := s.currentSigner()
	if err != nil {
		return nil, err
	}
	client, err := s.client()
	if err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, errors.New("sell amount must be positive")
	}
	quote := req.Quote.orDefault()
	owner := signer.Address()

	acc, err := s.poolAccounts(req.Mint.Mint, quote.Mint)
	if err != nil {
		return nil, err
	}
	prep, err := s.prepareTrade(ctx, client, owner, acc)
	if err != nil {
		return nil, err
	}

	base := types.LaunchpadBudget.Instructions()
	if prep.createA != nil {
		base = append(base, prep.createA)
	}
	// WSOL-аккаунт нужен для выплаты, создаём идемпотентно
	if prep.createB != nil {
		base = append(base, prep.createB)
	}

	accounts, err := s.tradeAccounts(owner, acc, prep)
	if err != nil {
		return nil, err
	}
	args := program.TradeArgs{Amount: req.Amount, MinimumOut: req.MinAmountOut, ShareFeeRate: DefaultShareFeeRate}

	sub, err := s.submitFirstSimulatable(ctx, client, signer, ActionSell, base, prep.blockhash,
		s.candidates.For(req.Mint.Mint.String()),
		func(pid solana.PublicKey) (solana.Instruction, error) {
			a := accounts
			a.PlatformID = pid
			return program.NewSellExactInInstruction(a, args)
		})
	if err != nil {
		return nil, err
	}

	meta := TxMeta{
		Action:  ActionSell,
		AmountA: ToUnits(req.Amount, req.Mint.Decimals),
		SymbolA: req.Mint.symbol(),
		AmountB: ToUnits(req.MinAmountOut, quote.Decimals),
		SymbolB: quote.Symbol,
	}
	return s.sent(ctx, owner, req.Mint.Mint, sub, meta), nil
}

// sent records the submission and announces it.
func (s *Service) sent(ctx context.Context, owner, mint solana.PublicKey, sub *submission, meta TxMeta) *TradeResult {
	s.logger.Info("Transaction sent",
		zap.String("action", meta.Action),
		zap.String("signature", sub.Signature.String()),
		zap.String("platform_id", sub.PlatformID.String()))

	s.record(ctx, &models.Transaction{
		Signature:     sub.Signature.String(),
		WalletAddress: owner.String(),
		Action:        meta.Action,
		Mint:          mint.String(),
		PlatformID:    sub.PlatformID.String(),
		AmountA:       meta.AmountA,
		SymbolA:       meta.SymbolA,
		AmountB:       meta.AmountB,
		SymbolB:       meta.SymbolB,
		Status:        models.StatusSent,
	})
	s.publish(events.TxStatusEvent{
		BaseEvent:  events.NewBase(events.TxSent),
		Signature:  sub.Signature.String(),
		PlatformID: sub.PlatformID.String(),
		Meta:       meta.event(),
	})

	return &TradeResult{Signature: sub.Signature, PlatformID: sub.PlatformID, Attempts: sub.Attempts, Meta: meta}
}

func (s *Service) record(ctx context.Context, tx *models.Transaction) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveTransaction(ctx, tx); err != nil {
		s.logger.Warn("Failed to record transaction", zap.String("signature", tx.Signature), zap.Error(err))
	}
}

// Track waits for confirmation of a sent trade and publishes the outcome.
func (s *Service) Track(ctx context.Context, res *TradeResult) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return s.confirm(ctx, client, res.Signature, res.PlatformID, res.Meta)
}

func (s *Service) confirm(ctx context.Context, client blockchain.Client, sig solana.Signature, platformID solana.PublicKey, meta TxMeta) error {
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	status := events.TxStatusEvent{Signature: sig.String(), Meta: meta.event()}
	if !platformID.IsZero() {
		status.PlatformID = platformID.String()
	}

	if err := client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		s.updateHistory(sig, models.StatusFailed, err.Error())
		status.BaseEvent = events.NewBase(events.TxFailed)
		status.Err = err
		s.publish(status)
		s.toast(events.StatusError, meta.Title(), "Transaction failed", err)
		return fmt.Errorf("transaction %s failed: %w", sig, err)
	}

	s.updateHistory(sig, models.StatusConfirmed, "")
	status.BaseEvent = events.NewBase(events.TxConfirmed)
	s.publish(status)
	s.logger.Info("Transaction confirmed", zap.String("signature", sig.String()))
	return nil
}

func (s *Service) updateHistory(sig solana.Signature, status, msg string) {
	if s.history == nil {
		return
	}
	// отдельный контекст: исходный мог уже истечь
	if err := s.history.UpdateTransactionStatus(context.Background(), sig.String(), status, msg); err != nil {
		s.logger.Warn("Failed to update transaction status", zap.String("signature", sig.String()), zap.Error(err))
	}
}
