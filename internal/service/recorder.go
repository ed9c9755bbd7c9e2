package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/metrics"
	"github.com/kkkkikiki/loyalty/internal/model"
)

// RecordResult is what RecordTransaction committed
type RecordResult struct {
	Transaction *model.Transaction
	// Assignment is nil when no tier is configured
	Assignment *model.Assignment
	Changed    bool
}

// RecordTransaction appends a purchase to the customer's ledger and
// re-evaluates the customer's tier in the same database transaction, so
// either both the entry and the resulting assignment are stored or neither is.
func (e *Engine) RecordTransaction(ctx context.Context, customerID int64, amount decimal.Decimal, reference string) (*RecordResult, error) {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordTransactionLatency(status, time.Since(start).Seconds())
	}()

	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer_id must be positive", ErrInvalidArgument)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	}

	var result *RecordResult
	err := e.inCustomerTx(ctx, customerID, func(tx *sqlx.Tx) error {
		now := e.now()
		txn := &model.Transaction{
			CustomerID: customerID,
			Amount:     amount,
			Kind:       model.KindPurchase,
			Reference:  strings.TrimSpace(reference),
			CreatedAt:  now,
		}
		if err := e.transactionRepo.CreateTransaction(ctx, tx, txn); err != nil {
			return err
		}

		assignment, changed, err := e.reassessCustomer(ctx, tx, customerID, nil, now)
		if err != nil {
			return err
		}
		result = &RecordResult{Transaction: txn, Assignment: assignment, Changed: changed}
		return nil
	})
	if err != nil {
		e.log.Error("failed to record transaction",
			zap.Int64("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}

	status = "success"
	if result.Changed {
		metrics.RecordTierChange(metrics.PathIncremental)
	}
	return result, nil
}
