package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Migrate types of a freshly created pool.
const (
	MigrateAMM  uint8 = 0
	MigrateCPMM uint8 = 1
)

// curveConstant is the only curve variant the client creates.
const curveConstant uint8 = 0

// TradeAccounts are the accounts of a buy_exact_in or sell_exact_in call.
type TradeAccounts struct {
	*PoolAccounts
	Owner         solana.PublicKey
	PlatformID    solana.PublicKey
	UserTokenA    solana.PublicKey
	UserTokenB    solana.PublicKey
	TokenProgramA solana.PublicKey
	TokenProgramB solana.PublicKey
	PlatformVault solana.PublicKey
	CreatorVault  solana.PublicKey
	// ShareATA receives the referral share; zero means no share account.
	ShareATA solana.PublicKey
}

// TradeArgs are the amounts of a trade in raw units.
type TradeArgs struct {
	Amount       uint64
	MinimumOut   uint64
	ShareFeeRate uint64
}

// NewBuyExactInInstruction spends exactly Amount of mintB for at least
// MinimumOut of mintA.
func NewBuyExactInInstruction(acc TradeAccounts, args TradeArgs) (solana.Instruction, error) {
	return newTradeInstruction(BuyExactInDiscriminator, acc, args)
}

// NewSellExactInInstruction sells exactly Amount of mintA for at least
// MinimumOut of mintB.
func NewSellExactInInstruction(acc TradeAccounts, args TradeArgs) (solana.Instruction, error) {
	return newTradeInstruction(SellExactInDiscriminator, acc, args)
}

func newTradeInstruction(disc [8]byte, acc TradeAccounts, args TradeArgs) (solana.Instruction, error) {
	if acc.PoolAccounts == nil {
		return nil, fmt.Errorf("pool accounts are required")
	}
	data, err := encodeArgs(disc, args)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: acc.Owner, IsSigner: true, IsWritable: false},
		{PublicKey: acc.Auth, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Config, IsSigner: false, IsWritable: false},
		{PublicKey: acc.PlatformID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Pool, IsSigner: false, IsWritable: true},
		{PublicKey: acc.UserTokenA, IsSigner: false, IsWritable: true},
		{PublicKey: acc.UserTokenB, IsSigner: false, IsWritable: true},
		{PublicKey: acc.VaultA, IsSigner: false, IsWritable: true},
		{PublicKey: acc.VaultB, IsSigner: false, IsWritable: true},
		{PublicKey: acc.MintA, IsSigner: false, IsWritable: false},
		{PublicKey: acc.MintB, IsSigner: false, IsWritable: false},
		{PublicKey: acc.TokenProgramA, IsSigner: false, IsWritable: false},
		{PublicKey: acc.TokenProgramB, IsSigner: false, IsWritable: false},
		{PublicKey: acc.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Program, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.PlatformVault, IsSigner: false, IsWritable: true},
		{PublicKey: acc.CreatorVault, IsSigner: false, IsWritable: true},
	}
	if !acc.ShareATA.IsZero() {
		accounts = append(accounts, &solana.AccountMeta{PublicKey: acc.ShareATA, IsSigner: false, IsWritable: true})
	}

	return solana.NewInstruction(acc.Program, accounts, data), nil
}

// MintParams describe the new base token.
type MintParams struct {
	Decimals uint8
	Name     string
	Symbol   string
	URI      string
}

// CurveParams of the constant-product curve.
type CurveParams struct {
	Supply                uint64
	TotalBaseSell         uint64
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

// VestingParams lock part of the supply for the creator.
type VestingParams struct {
	TotalLockedAmount uint64
	CliffPeriod       uint64
	UnlockPeriod      uint64
}

// initializeArgs is the borsh layout of initialize_v2.
type initializeArgs struct {
	Mint      MintParams
	CurveKind uint8
	Curve     CurveParams
	Vesting   VestingParams
	AmmFeeOn  uint8
}

// InitializeAccounts are the accounts of initialize_v2.
type InitializeAccounts struct {
	*PoolAccounts
	Payer      solana.PublicKey
	Creator    solana.PublicKey
	PlatformID solana.PublicKey
	Metadata   solana.PublicKey
	// TokenProgram owns both mints.
	TokenProgram solana.PublicKey
}

// NewInitializeV2Instruction creates the pool and the base mint. The mint
// keypair must co-sign the transaction.
func NewInitializeV2Instruction(acc InitializeAccounts, mint MintParams, curve CurveParams, vesting VestingParams) (solana.Instruction, error) {
	if acc.PoolAccounts == nil {
		return nil, fmt.Errorf("pool accounts are required")
	}
	data, err := encodeArgs(InitializeV2Discriminator, initializeArgs{
		Mint:      mint,
		CurveKind: curveConstant,
		Curve:     curve,
		Vesting:   vesting,
	})
	if err != nil {
		return nil, err
	}

	tokenProgram := acc.TokenProgram
	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: acc.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: acc.Creator, IsSigner: true, IsWritable: false},
		{PublicKey: acc.Config, IsSigner: false, IsWritable: false},
		{PublicKey: acc.PlatformID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Auth, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Pool, IsSigner: false, IsWritable: true},
		{PublicKey: acc.MintA, IsSigner: true, IsWritable: true},
		{PublicKey: acc.MintB, IsSigner: false, IsWritable: false},
		{PublicKey: acc.VaultA, IsSigner: false, IsWritable: true},
		{PublicKey: acc.VaultB, IsSigner: false, IsWritable: true},
		{PublicKey: acc.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: MetadataProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: acc.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: acc.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(acc.Program, accounts, data), nil
}

func encodeArgs(disc [8]byte, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode instruction args: %w", err)
	}
	return buf.Bytes(), nil
}
