package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/loyalty/internal/model"
)

const assignmentSelect = `
	SELECT ct.id, ct.customer_id, ct.tier_id, t.name AS tier_name, ct.total_spend,
	       ct.period_start, ct.period_end, ct.last_evaluated_at
	FROM customer_tiers ct
	JOIN tiers t ON t.id = ct.tier_id
`

// AssignmentRepository handles customer_tiers rows
type AssignmentRepository struct{}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{}
}

// GetCurrent returns the assignment whose period contains day, or nil
func (r *AssignmentRepository) GetCurrent(ctx context.Context, db DBExecutor, customerID int64, day time.Time) (*model.Assignment, error) {
	query := assignmentSelect + `
		WHERE ct.customer_id = $1
		  AND ct.period_start <= $2
		  AND ct.period_end >= $2
		ORDER BY ct.period_start DESC, ct.id DESC
		LIMIT 1
	`

	var a model.Assignment
	if err := db.GetContext(ctx, &a, query, customerID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current assignment: %w", err)
	}
	return &a, nil
}

// ListHistory returns all assignments of a customer ordered by period start
func (r *AssignmentRepository) ListHistory(ctx context.Context, db DBExecutor, customerID int64) ([]model.Assignment, error) {
	query := assignmentSelect + `
		WHERE ct.customer_id = $1
		ORDER BY ct.period_start ASC, ct.id ASC
	`

	var history []model.Assignment
	if err := db.SelectContext(ctx, &history, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	return history, nil
}

// InsertAssignment appends a new assignment and sets its ID
func (r *AssignmentRepository) InsertAssignment(ctx context.Context, db DBExecutor, a *model.Assignment) error {
	query := `
		INSERT INTO customer_tiers (customer_id, tier_id, total_spend, period_start, period_end, last_evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := db.GetContext(ctx, &a.ID, query,
		a.CustomerID, a.TierID, a.TotalSpend, a.PeriodStart, a.PeriodEnd, a.LastEvaluatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// CloseAssignment moves period_end of a superseded assignment
func (r *AssignmentRepository) CloseAssignment(ctx context.Context, db DBExecutor, id int64, periodEnd time.Time) error {
	result, err := db.ExecContext(ctx, `UPDATE customer_tiers SET period_end = $1 WHERE id = $2`, periodEnd, id)
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}
	if err := requireAffected(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// RefreshAssignment records a re-evaluation that kept the same tier
func (r *AssignmentRepository) RefreshAssignment(ctx context.Context, db DBExecutor, id int64, totalSpend decimal.Decimal, evaluatedAt time.Time) error {
	query := `
		UPDATE customer_tiers
		SET total_spend = $1, last_evaluated_at = $2
		WHERE id = $3
	`

	result, err := db.ExecContext(ctx, query, totalSpend, evaluatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to refresh assignment: %w", err)
	}
	if err := requireAffected(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
