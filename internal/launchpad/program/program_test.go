package program

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, [8]byte{250, 234, 13, 123, 213, 156, 19, 236}, BuyExactInDiscriminator)
	assert.Equal(t, [8]byte{149, 39, 222, 155, 211, 124, 152, 26}, SellExactInDiscriminator)
	assert.Equal(t, [8]byte{67, 153, 175, 39, 218, 16, 38, 32}, InitializeV2Discriminator)
	assert.Equal(t, [8]byte{247, 237, 227, 245, 215, 195, 222, 70}, PoolStateDiscriminator)
}

func TestDerivePoolAccounts(t *testing.T) {
	mintA := solana.NewWallet().PublicKey()
	acc, err := DerivePoolAccounts(DefaultProgramID, mintA, solana.WrappedSol, 0, 0)
	require.NoError(t, err)

	pool, err := PoolPDA(DefaultProgramID, mintA, solana.WrappedSol)
	require.NoError(t, err)
	assert.Equal(t, pool, acc.Pool)

	reversed, err := PoolPDA(DefaultProgramID, solana.WrappedSol, mintA)
	require.NoError(t, err)
	assert.NotEqual(t, pool, reversed)

	assert.NotEqual(t, acc.VaultA, acc.VaultB)

	other, err := ConfigPDA(DefaultProgramID, solana.WrappedSol, 0, 1)
	require.NoError(t, err)
	assert.NotEqual(t, acc.Config, other)
}

func samplePool() PoolState {
	return PoolState{
		Discriminator:     PoolStateDiscriminator,
		Epoch:             700,
		Status:            PoolStatusTrading,
		MintDecimalsA:     6,
		MintDecimalsB:     9,
		Supply:            1_000_000_000_000_000,
		TotalSellA:        793_100_000_000_000,
		TotalFundRaisingB: 85_000_000_000,
		ConfigID:          solana.NewWallet().PublicKey(),
		PlatformID:        solana.NewWallet().PublicKey(),
		MintA:             solana.NewWallet().PublicKey(),
		MintB:             solana.WrappedSol,
		Creator:           solana.NewWallet().PublicKey(),
	}
}

func TestDecodePool(t *testing.T) {
	want := samplePool()
	raw, err := Encode(&want)
	require.NoError(t, err)
	assert.Len(t, raw, 429)

	got, err := DecodePool(raw)
	require.NoError(t, err)
	assert.Equal(t, want.PlatformID, got.PlatformID)
	assert.Equal(t, want.Creator, got.Creator)
	assert.Equal(t, uint8(6), got.MintDecimalsA)
	assert.Equal(t, want.TotalSellA, got.TotalSellA)
}

func TestDecodeRejectsForeignAccounts(t *testing.T) {
	cfg := GlobalConfig{Discriminator: GlobalConfigDiscriminator, MintB: solana.WrappedSol}
	raw, err := Encode(&cfg)
	require.NoError(t, err)
	assert.Len(t, raw, 371)

	_, err = DecodePool(raw)
	assert.ErrorIs(t, err, ErrDiscriminator)

	decoded, err := DecodeConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, solana.WrappedSol, decoded.MintB)

	_, err = DecodeConfig([]byte{1, 2})
	assert.Error(t, err)
}

func tradeAccounts(t *testing.T) TradeAccounts {
	t.Helper()
	mintA := solana.NewWallet().PublicKey()
	pool, err := DerivePoolAccounts(DefaultProgramID, mintA, solana.WrappedSol, 0, 0)
	require.NoError(t, err)
	return TradeAccounts{
		PoolAccounts:  pool,
		Owner:         solana.NewWallet().PublicKey(),
		PlatformID:    solana.NewWallet().PublicKey(),
		UserTokenA:    solana.NewWallet().PublicKey(),
		UserTokenB:    solana.NewWallet().PublicKey(),
		TokenProgramA: solana.TokenProgramID,
		TokenProgramB: solana.TokenProgramID,
		PlatformVault: solana.NewWallet().PublicKey(),
		CreatorVault:  solana.NewWallet().PublicKey(),
	}
}

func TestBuyExactInInstruction(t *testing.T) {
	acc := tradeAccounts(t)
	ix, err := NewBuyExactInInstruction(acc, TradeArgs{Amount: 1_000_000_000, MinimumOut: 5, ShareFeeRate: 10000})
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 32)
	assert.Equal(t, BuyExactInDiscriminator[:], data[:8])
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint64(10000), binary.LittleEndian.Uint64(data[24:32]))

	metas := ix.Accounts()
	require.Len(t, metas, 18)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, acc.PlatformID, metas[3].PublicKey)
	assert.Equal(t, acc.Pool, metas[4].PublicKey)
	assert.True(t, metas[4].IsWritable)
	assert.Equal(t, ix.ProgramID(), DefaultProgramID)

	acc.ShareATA = solana.NewWallet().PublicKey()
	ix, err = NewBuyExactInInstruction(acc, TradeArgs{Amount: 1})
	require.NoError(t, err)
	assert.Len(t, ix.Accounts(), 19)
}

func TestSellExactInRequiresPool(t *testing.T) {
	_, err := NewSellExactInInstruction(TradeAccounts{}, TradeArgs{})
	assert.Error(t, err)
}

func TestInitializeV2Instruction(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	pool, err := DerivePoolAccounts(DefaultProgramID, mint, solana.WrappedSol, 0, 0)
	require.NoError(t, err)
	meta, err := MetadataPDA(mint)
	require.NoError(t, err)
	creator := solana.NewWallet().PublicKey()

	ix, err := NewInitializeV2Instruction(InitializeAccounts{
		PoolAccounts: pool,
		Payer:        creator,
		Creator:      creator,
		PlatformID:   solana.NewWallet().PublicKey(),
		Metadata:     meta,
	}, MintParams{Decimals: 6, Name: "Birth", Symbol: "BRTH", URI: "ipfs://x"},
		CurveParams{Supply: 1, TotalBaseSell: 2, TotalQuoteFundRaising: 3, MigrateType: MigrateAMM},
		VestingParams{})
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, InitializeV2Discriminator[:], data[:8])
	assert.Equal(t, uint8(6), data[8])
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[9:13]))
	assert.Equal(t, "Birth", string(data[13:18]))
	// disc + decimals + 3 strings + curve tag + curve + vesting + amm fee flag
	assert.Len(t, data, 8+1+(4+5)+(4+4)+(4+8)+1+25+24+1)

	metas := ix.Accounts()
	require.Len(t, metas, 18)
	assert.True(t, metas[6].IsSigner)
	assert.Equal(t, mint, metas[6].PublicKey)
	assert.Equal(t, solana.TokenProgramID, metas[11].PublicKey)
}
