// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a signature is recorded twice.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// Storage определяет интерфейс истории транзакций
type Storage interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, signature string) (*models.Transaction, error)
	// ListTransactions returns the newest records of a wallet first.
	ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, signature string, status string, errorMsg string) error
	Close()
}

// Validate checks the fields every store requires.
func Validate(tx *models.Transaction) error {
	if tx == nil || tx.Signature == "" || tx.WalletAddress == "" || tx.Action == "" {
		return ErrInvalidInput
	}
	return nil
}
