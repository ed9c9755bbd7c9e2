package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// TransactionRepository handles the append-only spending ledger
type TransactionRepository struct{}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a ledger entry and sets its ID
func (r *TransactionRepository) CreateTransaction(ctx context.Context, db DBExecutor, txn *model.Transaction) error {
	query := `
		INSERT INTO transactions (customer_id, amount, kind, reference, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := db.GetContext(ctx, &txn.ID, query,
		txn.CustomerID, txn.Amount, txn.Kind, txn.Reference, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// SumSpend totals a customer's transactions, optionally only those created at or after since
func (r *TransactionRepository) SumSpend(ctx context.Context, db DBExecutor, customerID int64, since *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE customer_id = $1
	`
	args := []interface{}{customerID}
	if since != nil {
		query += ` AND created_at >= $2`
		args = append(args, *since)
	}

	var total decimal.Decimal
	if err := db.GetContext(ctx, &total, query, args...); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum spend: %w", err)
	}
	return total, nil
}

// ListTransactions returns a customer's ledger newest first
func (r *TransactionRepository) ListTransactions(ctx context.Context, db DBExecutor, customerID int64) ([]model.Transaction, error) {
	query := `
		SELECT id, customer_id, amount, kind, reference, created_at
		FROM transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var txns []model.Transaction
	if err := db.SelectContext(ctx, &txns, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}
