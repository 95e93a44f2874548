package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

// setupTestDB starts a PostgreSQL container and opens the storage on it.
func setupTestDB(t *testing.T) storage.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewStorage(ctx, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPostgresStorage(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	tx := &models.Transaction{
		Signature:     "5xSig",
		WalletAddress: "Wallet111",
		Action:        models.ActionSell,
		Mint:          "Mint111",
		PlatformID:    "Platform111",
		AmountA:       decimal.RequireFromString("1234.567891"),
		SymbolA:       "BRTH",
		AmountB:       decimal.Zero,
		SymbolB:       "SOL",
		Status:        models.StatusSent,
	}
	require.NoError(t, s.SaveTransaction(ctx, tx))
	assert.NotZero(t, tx.ID)
	assert.ErrorIs(t, s.SaveTransaction(ctx, tx), storage.ErrDuplicateKey)

	got, err := s.GetTransaction(ctx, "5xSig")
	require.NoError(t, err)
	assert.True(t, tx.AmountA.Equal(got.AmountA))
	assert.Equal(t, "Platform111", got.PlatformID)

	require.NoError(t, s.UpdateTransactionStatus(ctx, "5xSig", models.StatusConfirmed, ""))
	list, err := s.ListTransactions(ctx, "Wallet111", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusConfirmed, list[0].Status)

	_, err = s.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "missing", models.StatusFailed, "x"), storage.ErrNotFound)
}
