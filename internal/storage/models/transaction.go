// internal/storage/models/transaction.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	StatusSent      = "sent"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Actions
const (
	ActionBuy    = "buy"
	ActionSell   = "sell"
	ActionCreate = "create"
)

// Transaction is one submitted launchpad transaction.
type Transaction struct {
	ID            int64
	Signature     string
	WalletAddress string
	Action        string
	Mint          string
	PlatformID    string
	AmountA       decimal.Decimal
	SymbolA       string
	AmountB       decimal.Decimal
	SymbolB       string
	Status        string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
