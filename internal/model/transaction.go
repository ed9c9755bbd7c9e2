package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies ledger entries
type TransactionKind string

const (
	KindPurchase   TransactionKind = "purchase"
	KindInitial    TransactionKind = "initial"
	KindTierChange TransactionKind = "tier_change" // zero-amount audit line
)

// Transaction represents an immutable spending ledger entry
type Transaction struct {
	ID         int64           `db:"id" json:"id"`
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Kind       TransactionKind `db:"kind" json:"kind"`
	Reference  string          `db:"reference" json:"reference"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
