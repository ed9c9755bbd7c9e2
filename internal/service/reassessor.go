package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kkkkikiki/loyalty/internal/metrics"
	"github.com/kkkkikiki/loyalty/internal/model"
)

// ReassessResult summarizes one batch run
type ReassessResult struct {
	Processed int `json:"customers_processed"`
	Changed   int `json:"customers_changed"`
	Failed    int `json:"customers_failed"`
}

// ReassessAllCustomers recomputes every customer's tier from the ledger.
//
// Each customer is handled in its own transaction, so a failure or a
// cancellation part way through leaves already-processed customers intact
// and a re-run picks up cleanly. Running it twice with no new transactions
// changes nothing the second time. Per-customer failures are logged and
// counted; the run continues.
//
// Tier definitions are read once, before any customer is locked, and that
// snapshot is used for the whole run. A tier edited or deleted mid-run takes
// effect at the next evaluation.
func (e *Engine) ReassessAllCustomers(ctx context.Context) (ReassessResult, error) {
	start := time.Now()
	now := e.now()

	ids, err := e.customerRepo.ListCustomerIDs(ctx, e.postgres)
	if err != nil {
		metrics.RecordReassessment("failure", time.Since(start).Seconds(), 0, 0, 0)
		return ReassessResult{}, err
	}
	// One snapshot of tier definitions for the whole run
	tiers, err := e.tierRepo.ListEligibleTiers(ctx, e.postgres)
	if err != nil {
		metrics.RecordReassessment("failure", time.Since(start).Seconds(), 0, 0, 0)
		return ReassessResult{}, err
	}
	if tiers == nil {
		// nil would make reassessCustomer reload tiers per customer
		tiers = []model.Tier{}
	}

	var (
		mu     sync.Mutex
		result ReassessResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		customerID := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			var changed bool
			err := e.inCustomerTx(gctx, customerID, func(tx *sqlx.Tx) error {
				var err error
				_, changed, err = e.reassessCustomer(gctx, tx, customerID, tiers, now)
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					e.log.Error("failed to reassess customer",
						zap.Int64("customer_id", customerID),
						zap.Error(err))
				}
			case changed:
				result.Processed++
				result.Changed++
				metrics.RecordTierChange(metrics.PathBatch)
			default:
				result.Processed++
			}
			return nil
		})
	}
	_ = g.Wait()

	status := "success"
	if result.Failed > 0 {
		status = "partial"
	}
	metrics.RecordReassessment(status, time.Since(start).Seconds(),
		result.Changed, result.Processed-result.Changed, result.Failed)

	e.log.Info("reassessment finished",
		zap.Int("customers", len(ids)),
		zap.Int("processed", result.Processed),
		zap.Int("changed", result.Changed),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(start)))

	// Interrupted runs report what they got through
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
