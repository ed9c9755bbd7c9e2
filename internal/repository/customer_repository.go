package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// summarySelect joins each customer with the assignment whose period contains $1
const summarySelect = `
	SELECT c.id, c.name, c.phone, c.email, c.date_of_birth, c.address, c.current_tier_id, c.created_at,
	       t.name AS tier_name,
	       COALESCE(ct.total_spend, 0) AS total_spend
	FROM customers c
	LEFT JOIN customer_tiers ct ON ct.customer_id = c.id
		AND ct.period_start <= $1
		AND ct.period_end >= $1
	LEFT JOIN tiers t ON t.id = ct.tier_id
`

// CustomerRepository handles customer data operations
type CustomerRepository struct{}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{}
}

// CreateCustomer inserts a customer and sets its ID
func (r *CustomerRepository) CreateCustomer(ctx context.Context, db DBExecutor, customer *model.Customer) error {
	query := `
		INSERT INTO customers (name, phone, email, date_of_birth, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := db.GetContext(ctx, &customer.ID, query,
		customer.Name, customer.Phone, customer.Email, customer.DateOfBirth, customer.Address, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer by ID
func (r *CustomerRepository) GetCustomer(ctx context.Context, db DBExecutor, id int64) (*model.Customer, error) {
	query := `
		SELECT id, name, phone, email, date_of_birth, address, current_tier_id, created_at
		FROM customers
		WHERE id = $1
	`

	var customer model.Customer
	if err := db.GetContext(ctx, &customer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// LockCustomer takes a row lock on the customer for the rest of the transaction.
// Every tier assignment write happens behind this lock.
func (r *CustomerRepository) LockCustomer(ctx context.Context, db DBExecutor, id int64) error {
	query := `SELECT id FROM customers WHERE id = $1 FOR UPDATE`

	var locked int64
	if err := db.GetContext(ctx, &locked, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock customer: %w", err)
	}
	return nil
}

// ListCustomerIDs returns every customer id in ascending order
func (r *CustomerRepository) ListCustomerIDs(ctx context.Context, db DBExecutor) ([]int64, error) {
	var ids []int64
	if err := db.SelectContext(ctx, &ids, `SELECT id FROM customers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list customer ids: %w", err)
	}
	return ids, nil
}

// GetCustomerSummary retrieves a customer with the tier held on day
func (r *CustomerRepository) GetCustomerSummary(ctx context.Context, db DBExecutor, id int64, day time.Time) (*model.CustomerSummary, error) {
	query := summarySelect + `
		WHERE c.id = $2
		ORDER BY ct.period_start DESC NULLS LAST
		LIMIT 1
	`

	var summary model.CustomerSummary
	if err := db.GetContext(ctx, &summary, query, day, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &summary, nil
}

// ListCustomerSummaries lists customers newest first with the tier held on day
func (r *CustomerRepository) ListCustomerSummaries(ctx context.Context, db DBExecutor, day time.Time) ([]model.CustomerSummary, error) {
	query := summarySelect + `
		ORDER BY c.created_at DESC, c.id DESC
	`

	var summaries []model.CustomerSummary
	if err := db.SelectContext(ctx, &summaries, query, day); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return summaries, nil
}

// SetCurrentTier refreshes the cached current_tier_id. Only the assignment
// store calls this, inside the same transaction as the assignment write.
func (r *CustomerRepository) SetCurrentTier(ctx context.Context, db DBExecutor, customerID int64, tierID *int64) error {
	result, err := db.ExecContext(ctx, `UPDATE customers SET current_tier_id = $1 WHERE id = $2`, tierID, customerID)
	if err != nil {
		return fmt.Errorf("failed to update current tier: %w", err)
	}
	if err := requireAffected(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
