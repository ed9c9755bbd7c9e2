package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/repository"
	"github.com/kkkkikiki/loyalty/internal/tier"
)

// Engine owns tier assignment for customers. The incremental path
// (RecordTransaction, CreateCustomer) and the batch path (ReassessAllCustomers)
// both go through reassessCustomer, so they share spend aggregation, tier
// resolution and assignment writes.
type Engine struct {
	postgres        *sqlx.DB
	tierRepo        *repository.TierRepository
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	assignmentRepo  *repository.AssignmentRepository

	log     *zap.Logger
	now     func() time.Time
	window  tier.SpendWindow
	workers int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSpendWindow sets which transactions count toward eligibility
func WithSpendWindow(w tier.SpendWindow) Option {
	return func(e *Engine) { e.window = w }
}

// WithWorkers sets how many customers a batch run processes in parallel
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a new Engine instance
func NewEngine(postgres *sqlx.DB, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		postgres:        postgres,
		tierRepo:        repository.NewTierRepository(),
		customerRepo:    repository.NewCustomerRepository(),
		transactionRepo: repository.NewTransactionRepository(),
		assignmentRepo:  repository.NewAssignmentRepository(),
		log:             log,
		now:             time.Now,
		window:          tier.WindowLifetime,
		workers:         1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type planAction int

const (
	// no eligible tier: leave whatever is there untouched
	actionSkip planAction = iota
	// same tier: update total_spend and last_evaluated_at in place
	actionRefresh
	// different tier or none yet: close current, open a new period
	actionReplace
)

// assignmentPlan is the decision applyAssignment makes before touching the database
type assignmentPlan struct {
	action  planAction
	current *model.Assignment
	closeAt time.Time
	next    *model.Assignment
	audit   string
}

// planAssignment decides how to move customerID from current to resolved.
// It is pure so the period bookkeeping can be tested without a database.
func planAssignment(customerID int64, current *model.Assignment, resolved *model.Tier, spend decimal.Decimal, now time.Time) assignmentPlan {
	if resolved == nil {
		return assignmentPlan{action: actionSkip, current: current}
	}
	if current != nil && current.TierID == resolved.ID {
		return assignmentPlan{action: actionRefresh, current: current}
	}

	day := model.Day(now)
	plan := assignmentPlan{
		action:  actionReplace,
		current: current,
		closeAt: day.AddDate(0, 0, -1),
		next: &model.Assignment{
			CustomerID:      customerID,
			TierID:          resolved.ID,
			TierName:        resolved.Name,
			TotalSpend:      spend,
			PeriodStart:     day,
			PeriodEnd:       model.OpenPeriodEnd,
			LastEvaluatedAt: now,
		},
	}
	from := model.UnassignedName
	if current != nil {
		from = current.TierName
	}
	plan.audit = fmt.Sprintf("Tier changed from %q to %q", from, resolved.Name)
	return plan
}

// GetCurrentAssignment returns the assignment whose period contains asOf,
// or nil when the customer holds no tier
func (e *Engine) GetCurrentAssignment(ctx context.Context, customerID int64, asOf time.Time) (*model.Assignment, error) {
	if err := e.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return e.assignmentRepo.GetCurrent(ctx, e.postgres, customerID, model.Day(asOf))
}

// ApplyAssignment records resolved as the customer's tier inside db, which
// must be a transaction holding the customer's row lock. It returns the
// resulting current assignment and whether the tier changed.
func (e *Engine) ApplyAssignment(ctx context.Context, db repository.DBExecutor, customerID int64, resolved *model.Tier, spend decimal.Decimal, now time.Time) (*model.Assignment, bool, error) {
	current, err := e.assignmentRepo.GetCurrent(ctx, db, customerID, model.Day(now))
	if err != nil {
		return nil, false, err
	}

	plan := planAssignment(customerID, current, resolved, spend, now)
	switch plan.action {
	case actionSkip:
		return current, false, nil

	case actionRefresh:
		if err := e.assignmentRepo.RefreshAssignment(ctx, db, current.ID, spend, now); err != nil {
			return nil, false, err
		}
		if err := e.customerRepo.SetCurrentTier(ctx, db, customerID, &current.TierID); err != nil {
			return nil, false, err
		}
		current.TotalSpend = spend
		current.LastEvaluatedAt = now
		return current, false, nil
	}

	if plan.current != nil {
		if err := e.assignmentRepo.CloseAssignment(ctx, db, plan.current.ID, plan.closeAt); err != nil {
			return nil, false, err
		}
	}
	if err := e.assignmentRepo.InsertAssignment(ctx, db, plan.next); err != nil {
		return nil, false, err
	}
	if err := e.customerRepo.SetCurrentTier(ctx, db, customerID, &plan.next.TierID); err != nil {
		return nil, false, err
	}

	audit := &model.Transaction{
		CustomerID: customerID,
		Amount:     decimal.Zero,
		Kind:       model.KindTierChange,
		Reference:  plan.audit,
		CreatedAt:  now,
	}
	if err := e.transactionRepo.CreateTransaction(ctx, db, audit); err != nil {
		return nil, false, err
	}

	e.log.Info("tier changed",
		zap.Int64("customer_id", customerID),
		zap.String("to", plan.next.TierName),
		zap.String("total_spend", spend.String()))
	return plan.next, true, nil
}

// reassessCustomer recomputes spend from the ledger, resolves the tier and
// applies it. tiers may be nil, in which case the eligible tiers are loaded
// inside db.
func (e *Engine) reassessCustomer(ctx context.Context, db repository.DBExecutor, customerID int64, tiers []model.Tier, now time.Time) (*model.Assignment, bool, error) {
	if tiers == nil {
		var err error
		tiers, err = e.tierRepo.ListEligibleTiers(ctx, db)
		if err != nil {
			return nil, false, err
		}
	}

	spend, err := e.transactionRepo.SumSpend(ctx, db, customerID, e.window.Since(now))
	if err != nil {
		return nil, false, err
	}

	return e.ApplyAssignment(ctx, db, customerID, tier.Resolve(spend, tiers), spend, now)
}

// inCustomerTx runs fn in a transaction holding the customer's row lock.
// A write conflict is retried once from committed state; a second conflict
// is reported as ErrConcurrentUpdate.
func (e *Engine) inCustomerTx(ctx context.Context, customerID int64, fn func(tx *sqlx.Tx) error) error {
	err := e.runCustomerTx(ctx, customerID, fn)
	if err == nil || !isConflict(err) {
		return err
	}

	e.log.Warn("tier update conflict, retrying",
		zap.Int64("customer_id", customerID),
		zap.Error(err))

	err = e.runCustomerTx(ctx, customerID, fn)
	if err != nil && isConflict(err) {
		return fmt.Errorf("%w: customer %d: %v", ErrConcurrentUpdate, customerID, err)
	}
	return err
}

func (e *Engine) runCustomerTx(ctx context.Context, customerID int64, fn func(tx *sqlx.Tx) error) error {
	tx, err := e.postgres.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := e.customerRepo.LockCustomer(ctx, tx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
