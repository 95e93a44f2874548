package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

func record(sig, wallet string) *models.Transaction {
	return &models.Transaction{
		Signature:     sig,
		WalletAddress: wallet,
		Action:        models.ActionBuy,
		Mint:          "MintAddress123",
		AmountA:       decimal.RequireFromString("1500.25"),
		SymbolA:       "BRTH",
		AmountB:       decimal.RequireFromString("0.1"),
		SymbolB:       "SOL",
		Status:        models.StatusSent,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveTransaction(ctx, record("sig-1", "wallet-1")))
	assert.ErrorIs(t, s.SaveTransaction(ctx, record("sig-1", "wallet-1")), storage.ErrDuplicateKey)
	assert.ErrorIs(t, s.SaveTransaction(ctx, &models.Transaction{}), storage.ErrInvalidInput)

	got, err := s.GetTransaction(ctx, "sig-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.True(t, got.AmountA.Equal(decimal.RequireFromString("1500.25")))

	_, err = s.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListNewestFirstWithPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, sig := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveTransaction(ctx, record(sig, "w")))
	}
	require.NoError(t, s.SaveTransaction(ctx, record("other", "w2")))

	all, err := s.ListTransactions(ctx, "w", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Signature)

	page, err := s.ListTransactions(ctx, "w", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Signature)

	empty, err := s.ListTransactions(ctx, "w", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SaveTransaction(ctx, record("sig", "w")))

	require.NoError(t, s.UpdateTransactionStatus(ctx, "sig", models.StatusFailed, "slippage"))
	got, err := s.GetTransaction(ctx, "sig")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "slippage", got.ErrorMessage)

	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "nope", models.StatusConfirmed, ""), storage.ErrNotFound)
}
