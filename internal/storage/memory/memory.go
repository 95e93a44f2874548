// Package memory is the default in-process transaction history.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

// Storage is an in-memory implementation of storage.Storage.
type Storage struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string]*models.Transaction // keyed by signature
	now    func() time.Time
}

func New() *Storage {
	return &Storage{data: make(map[string]*models.Transaction), now: time.Now}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	if err := storage.Validate(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[tx.Signature]; exists {
		return storage.ErrDuplicateKey
	}
	s.nextID++
	now := s.now()
	tx.ID = s.nextID
	tx.CreatedAt, tx.UpdatedAt = now, now

	cp := *tx
	s.data[tx.Signature] = &cp
	return nil
}

func (s *Storage) GetTransaction(_ context.Context, signature string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.data[signature]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *Storage) ListTransactions(_ context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	s.mu.RLock()
	var out []*models.Transaction
	for _, tx := range s.data {
		if tx.WalletAddress == walletAddress {
			cp := *tx
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) UpdateTransactionStatus(_ context.Context, signature string, status string, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.data[signature]
	if !ok {
		return storage.ErrNotFound
	}
	tx.Status = status
	tx.ErrorMessage = errorMsg
	tx.UpdatedAt = s.now()
	return nil
}

func (s *Storage) Close() {}
