package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/metrics"
	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/repository"
)

const initialSpendReference = "Initial spending from import"

// NewCustomer holds the fields accepted when registering a customer
type NewCustomer struct {
	Name         string
	Phone        string
	Email        *string
	DateOfBirth  *time.Time
	Address      *string
	InitialSpend decimal.Decimal
}

// CustomerTier is what a customer sees about their membership
type CustomerTier struct {
	TierName    string
	TotalSpend  decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
	Benefits    []model.Benefit
}

// CreateCustomer registers a customer, records any initial spend and
// assigns the first tier, all in one transaction.
func (e *Engine) CreateCustomer(ctx context.Context, in NewCustomer) (*model.Customer, *model.Assignment, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.Phone == "" {
		return nil, nil, fmt.Errorf("%w: phone is required", ErrInvalidArgument)
	}
	if in.InitialSpend.IsNegative() {
		return nil, nil, fmt.Errorf("%w: initial_spend must not be negative", ErrInvalidArgument)
	}

	tx, err := e.postgres.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := e.now()
	customer := &model.Customer{
		Name:        in.Name,
		Phone:       in.Phone,
		Email:       in.Email,
		DateOfBirth: in.DateOfBirth,
		Address:     in.Address,
		CreatedAt:   now,
	}
	if err := e.customerRepo.CreateCustomer(ctx, tx, customer); err != nil {
		if isDuplicatePhone(err) {
			return nil, nil, ErrDuplicatePhone
		}
		return nil, nil, err
	}

	if in.InitialSpend.IsPositive() {
		initial := &model.Transaction{
			CustomerID: customer.ID,
			Amount:     in.InitialSpend,
			Kind:       model.KindInitial,
			Reference:  initialSpendReference,
			CreatedAt:  now,
		}
		if err := e.transactionRepo.CreateTransaction(ctx, tx, initial); err != nil {
			return nil, nil, err
		}
	}

	assignment, changed, err := e.reassessCustomer(ctx, tx, customer.ID, nil, now)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if changed {
		metrics.RecordTierChange(metrics.PathCreate)
	}
	if assignment != nil {
		customer.CurrentTierID = &assignment.TierID
	}
	e.log.Info("customer created", zap.Int64("customer_id", customer.ID))
	return customer, assignment, nil
}

// GetCustomer returns a customer with its current tier and recorded spend
func (e *Engine) GetCustomer(ctx context.Context, customerID int64) (*model.CustomerSummary, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer_id must be positive", ErrInvalidArgument)
	}
	summary, err := e.customerRepo.GetCustomerSummary(ctx, e.postgres, customerID, model.Day(e.now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return summary, nil
}

// ListCustomers returns all customers, newest first
func (e *Engine) ListCustomers(ctx context.Context) ([]model.CustomerSummary, error) {
	return e.customerRepo.ListCustomerSummaries(ctx, e.postgres, model.Day(e.now()))
}

// ListTransactions returns a customer's ledger, newest first
func (e *Engine) ListTransactions(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	if err := e.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return e.transactionRepo.ListTransactions(ctx, e.postgres, customerID)
}

// GetAssignmentHistory returns every assignment the customer has held,
// ordered by period start
func (e *Engine) GetAssignmentHistory(ctx context.Context, customerID int64) ([]model.Assignment, error) {
	if err := e.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return e.assignmentRepo.ListHistory(ctx, e.postgres, customerID)
}

// GetCustomerTier returns the customer's current tier with its benefits, or
// nil when the customer is unassigned
func (e *Engine) GetCustomerTier(ctx context.Context, customerID int64) (*CustomerTier, error) {
	current, err := e.GetCurrentAssignment(ctx, customerID, e.now())
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	benefits, err := e.tierRepo.ListBenefits(ctx, e.postgres, current.TierID)
	if err != nil {
		return nil, err
	}
	return &CustomerTier{
		TierName:    current.TierName,
		TotalSpend:  current.TotalSpend,
		PeriodStart: current.PeriodStart,
		PeriodEnd:   current.PeriodEnd,
		Benefits:    benefits,
	}, nil
}

func (e *Engine) requireCustomer(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return fmt.Errorf("%w: customer_id must be positive", ErrInvalidArgument)
	}
	if _, err := e.customerRepo.GetCustomer(ctx, e.postgres, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	return nil
}
