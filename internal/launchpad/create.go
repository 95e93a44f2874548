package launchpad

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/blockchain/solbc"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
	"github.com/rovshanmuradov/birthpad/internal/types"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// Token limits
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
)

// Pool defaults for a new mint.
const (
	DefaultDecimals          uint8  = 6
	DefaultSupply            uint64 = 1_000_000_000_000_000
	DefaultTotalSellA        uint64 = 793_100_000_000_000
	DefaultTotalFundRaisingB uint64 = 85_000_000_000
	DefaultMigrateType              = "amm"
)

// ErrValidation is matched by every input validation failure.
var ErrValidation = errors.New("validation failed")

// ValidationError carries the toast shown to the user.
type ValidationError struct {
	Title       string
	Description string
}

func (e *ValidationError) Error() string { return e.Title + ": " + e.Description }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ValidateToken checks name and symbol length in characters.
func ValidateToken(name, symbol string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &ValidationError{Title: "Token name error", Description: fmt.Sprintf("can not exceed length %d", MaxNameLength)}
	}
	if utf8.RuneCountInString(symbol) > MaxSymbolLength {
		return &ValidationError{Title: "Token symbol error", Description: fmt.Sprintf("can not exceed length %d", MaxSymbolLength)}
	}
	return nil
}

// validate toasts and returns the validation error, if any.
func (s *Service) validate(name, symbol string) error {
	err := ValidateToken(name, symbol)
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.toast(events.StatusError, verr.Title, verr.Description, nil)
	}
	return err
}

// CurveConfig overrides pool parameters. Zero fields take the defaults.
type CurveConfig struct {
	Decimals          uint8
	Supply            uint64
	TotalSellA        uint64
	TotalFundRaisingB uint64
	TotalLockedAmount uint64
	CliffPeriod       uint64
	UnlockPeriod      uint64
	MigrateType       string // amm | cpmm
}

func (c CurveConfig) withDefaults() CurveConfig {
	if c.Decimals == 0 {
		c.Decimals = DefaultDecimals
	}
	if c.Supply == 0 {
		c.Supply = DefaultSupply
	}
	if c.TotalSellA == 0 {
		c.TotalSellA = DefaultTotalSellA
	}
	if c.TotalFundRaisingB == 0 {
		c.TotalFundRaisingB = DefaultTotalFundRaisingB
	}
	if c.MigrateType == "" {
		c.MigrateType = DefaultMigrateType
	}
	return c
}

func (c CurveConfig) migrateType() uint8 {
	if c.MigrateType == "cpmm" {
		return program.MigrateCPMM
	}
	return program.MigrateAMM
}

// MintRequest is the input of CreateMint and CreateRandomMint.
type MintRequest struct {
	Name        string
	Symbol      string
	Description string
	ConfigID    string
	CfToken     string // CreateMint only
	Website     string
	Twitter     string
	Telegram    string
	File        *api.File
	Curve       CurveConfig
}

func (s *Service) mintForm(owner solana.PublicKey, req MintRequest) api.MintForm {
	c := req.Curve.withDefaults()
	return api.MintForm{
		Name:              req.Name,
		Ticker:            req.Symbol,
		Description:       req.Description,
		Wallet:            owner.String(),
		Decimals:          c.Decimals,
		Supply:            c.Supply,
		TotalSellA:        c.TotalSellA,
		TotalFundRaisingB: c.TotalFundRaisingB,
		TotalLockedAmount: c.TotalLockedAmount,
		CliffPeriod:       c.CliffPeriod,
		UnlockPeriod:      c.UnlockPeriod,
		PlatformID:        s.State().PlatformID.String(),
		MigrateType:       c.MigrateType,
		CfToken:           req.CfToken,
		ConfigID:          req.ConfigID,
		Website:           req.Website,
		Twitter:           req.Twitter,
		Telegram:          req.Telegram,
		File:              req.File,
	}
}

func (s *Service) authorized() (solana.PublicKey, string, error) {
	signer, err := s.currentSigner()
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	authToken := s.State().Token
	if authToken == "" {
		return solana.PublicKey{}, "", ErrNotAuthorized
	}
	return signer.Address(), authToken, nil
}

// CreateMint registers mint metadata on the mint host and returns the mint address.
func (s *Service) CreateMint(ctx context.Context, req MintRequest) (string, error) {
	if err := s.validate(req.Name, req.Symbol); err != nil {
		return "", err
	}
	owner, authToken, err := s.authorized()
	if err != nil {
		return "", err
	}
	mint, err := s.api.CreateMintInfo(ctx, authToken, s.mintForm(owner, req))
	if err != nil {
		s.logger.Error("Create mint failed", zap.Error(err))
		return "", fmt.Errorf("create mint info: %w", err)
	}
	return mint, nil
}

// CreateRandomMint asks the mint host for a reserved mint address.
func (s *Service) CreateRandomMint(ctx context.Context, req MintRequest) (*api.RandomMint, error) {
	if err := s.validate(req.Name, req.Symbol); err != nil {
		return nil, err
	}
	owner, authToken, err := s.authorized()
	if err != nil {
		return nil, err
	}
	req.CfToken = ""
	res, err := s.api.CreateRandomMint(ctx, authToken, s.mintForm(owner, req))
	if err != nil {
		return nil, fmt.Errorf("create random mint: %w", err)
	}
	return res, nil
}

// CreateRequest is the input of CreateAndBuy.
type CreateRequest struct {
	Name   string
	Symbol string
	URI    string
	// MintKey signs for the new mint; a fresh key is generated when empty.
	MintKey        solana.PrivateKey
	BuyAmount      uint64
	MinMintAAmount uint64
	CreateOnly     bool
	Curve          CurveConfig
}

// CreateResult is returned after confirmation.
type CreateResult struct {
	Signature solana.Signature
	Mint      solana.PublicKey
	Pool      solana.PublicKey
	ConfigID  solana.PublicKey
	Meta      TxMeta
}

// CreateAndBuy creates the mint and its pool and, unless CreateOnly, buys in
// the same transaction. It waits for confirmation.
func (s *Service) CreateAndBuy(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := s.validate(req.Name, req.Symbol); err != nil {
		return nil, err
	}
	signer, err := s.currentSigner()
	if err != nil {
		return nil, err
	}
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	configs, err := s.api.LaunchpadConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch launchpad configs: %w", err)
	}
	if len(configs) == 0 {
		return nil, errors.New("no launchpad configs available")
	}
	lc := configs[0]
	configID, err := solana.PublicKeyFromBase58(lc.Key.PubKey)
	if err != nil {
		return nil, fmt.Errorf("invalid config id %q: %w", lc.Key.PubKey, err)
	}
	mintB, err := solana.PublicKeyFromBase58(lc.Key.MintB)
	if err != nil {
		return nil, fmt.Errorf("invalid quote mint %q: %w", lc.Key.MintB, err)
	}
	quote := QuoteToken{Mint: mintB, Decimals: uint8(lc.MintInfoB.Decimals), Symbol: lc.MintInfoB.Symbol}.orDefault()

	mintKey := req.MintKey
	if len(mintKey) == 0 {
		if mintKey, err = solana.NewRandomPrivateKey(); err != nil {
			return nil, fmt.Errorf("generate mint key: %w", err)
		}
	}
	mintA := mintKey.PublicKey()
	owner := signer.Address()
	curve := req.Curve.withDefaults()
	platformID := s.State().PlatformID

	acc, err := program.DerivePoolAccounts(s.programID, mintA, mintB, lc.Key.CurveType, lc.Key.Index)
	if err != nil {
		return nil, err
	}
	acc.Config = configID
	metadata, err := program.MetadataPDA(mintA)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}

	initIx, err := program.NewInitializeV2Instruction(program.InitializeAccounts{
		PoolAccounts: acc,
		Payer:        owner,
		Creator:      owner,
		PlatformID:   platformID,
		Metadata:     metadata,
	},
		program.MintParams{Decimals: curve.Decimals, Name: req.Name, Symbol: req.Symbol, URI: req.URI},
		program.CurveParams{
			Supply:                curve.Supply,
			TotalBaseSell:         curve.TotalSellA,
			TotalQuoteFundRaising: curve.TotalFundRaisingB,
			MigrateType:           curve.migrateType(),
		},
		program.VestingParams{
			TotalLockedAmount: curve.TotalLockedAmount,
			CliffPeriod:       curve.CliffPeriod,
			UnlockPeriod:      curve.UnlockPeriod,
		})
	if err != nil {
		return nil, err
	}

	instructions := append(types.LaunchpadBudget.Instructions(), initIx)
	buying := !req.CreateOnly && req.BuyAmount > 0
	if buying {
		buyIxs, err := s.initialBuy(owner, acc, platformID, req)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, buyIxs...)
	}

	blockhash, err := client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get blockhash: %w", err)
	}
	tx, err := compileV0(instructions, blockhash, owner)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	if sim, err := client.SimulateTransaction(ctx, tx); err != nil {
		s.logger.Warn("Create simulation request failed", zap.Error(err))
	} else {
		s.logger.Info("Create simulation",
			zap.Bool("failed", sim.Failed()),
			zap.Uint64("units", sim.UnitsConsumed),
			zap.Strings("logs", sim.Logs))
	}

	if err := signer.SignTransaction(tx, mintKey); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	meta := TxMeta{
		Action:  ActionCreate,
		AmountA: ToUnits(req.MinMintAAmount, curve.Decimals),
		SymbolA: req.Symbol,
		SymbolB: quote.Symbol,
	}
	if buying {
		meta.AmountB = ToUnits(req.BuyAmount, quote.Decimals)
	}

	sig, err := client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{PreflightCommitment: rpc.CommitmentConfirmed})
	if err != nil {
		s.logger.Error("Transaction failed", zap.Error(err))
		s.toast(events.StatusError, "", "Transaction failed", err)
		return nil, fmt.Errorf("send transaction: %w", solbc.DescribeRPCError(err))
	}
	s.logger.Info("Create transaction sent", zap.String("signature", sig.String()), zap.String("mint", mintA.String()))

	s.record(ctx, &models.Transaction{
		Signature:     sig.String(),
		WalletAddress: owner.String(),
		Action:        ActionCreate,
		Mint:          mintA.String(),
		PlatformID:    platformID.String(),
		AmountA:       meta.AmountA,
		SymbolA:       meta.SymbolA,
		AmountB:       meta.AmountB,
		SymbolB:       meta.SymbolB,
		Status:        models.StatusSent,
	})
	s.publish(events.TxStatusEvent{
		BaseEvent:  events.NewBase(events.TxSent),
		Signature:  sig.String(),
		PlatformID: platformID.String(),
		Meta:       meta.event(),
	})

	if err := s.confirm(ctx, client, sig, platformID, meta); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.RefreshPoolMint = mintA.String()
	s.mu.Unlock()
	s.publish(events.PoolRefreshEvent{BaseEvent: events.NewBase(events.PoolRefresh), Mint: mintA.String()})

	return &CreateResult{Signature: sig, Mint: mintA, Pool: acc.Pool, ConfigID: configID, Meta: meta}, nil
}

// initialBuy funds the WSOL account and buys right after initialization.
func (s *Service) initialBuy(owner solana.PublicKey, acc *program.PoolAccounts, platformID solana.PublicKey, req CreateRequest) ([]solana.Instruction, error) {
	userTokenA, err := wallet.FindATA(owner, acc.MintA, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	userTokenB, err := wallet.FindATA(owner, acc.MintB, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	platformVault, err := program.PlatformVaultPDA(s.programID, platformID, acc.MintB)
	if err != nil {
		return nil, err
	}
	creatorVault, err := program.CreatorVaultPDA(s.programID, owner, acc.MintB)
	if err != nil {
		return nil, err
	}

	buyIx, err := program.NewBuyExactInInstruction(program.TradeAccounts{
		PoolAccounts:  acc,
		Owner:         owner,
		PlatformID:    platformID,
		UserTokenA:    userTokenA,
		UserTokenB:    userTokenB,
		TokenProgramA: solana.TokenProgramID,
		TokenProgramB: solana.TokenProgramID,
		PlatformVault: platformVault,
		CreatorVault:  creatorVault,
		ShareATA:      userTokenB,
	}, program.TradeArgs{Amount: req.BuyAmount, MinimumOut: req.MinMintAAmount, ShareFeeRate: DefaultShareFeeRate})
	if err != nil {
		return nil, err
	}

	ixs := []solana.Instruction{
		wallet.CreateAssociatedTokenAccountIdempotentInstruction(owner, owner, acc.MintA, solana.TokenProgramID),
		wallet.CreateAssociatedTokenAccountIdempotentInstruction(owner, owner, acc.MintB, solana.TokenProgramID),
	}
	if acc.MintB.Equals(solana.WrappedSol) {
		ixs = append(ixs,
			system.NewTransferInstruction(req.BuyAmount, owner, userTokenB).Build(),
			token.NewSyncNativeInstruction(userTokenB).Build(),
		)
	}
	return append(ixs, buyIx), nil
}
