package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kkkkikiki/loyalty/internal/model"
)

const tierColumns = `id, name, min_spend, rank_order, evaluation_period, is_active, deleted_at, created_at, updated_at`

// TierRepository handles tier and benefit data operations
type TierRepository struct{}

// NewTierRepository creates a new tier repository
func NewTierRepository() *TierRepository {
	return &TierRepository{}
}

// ListTiers returns non-deleted tiers with their benefits, threshold ascending
func (r *TierRepository) ListTiers(ctx context.Context, db DBExecutor) ([]model.Tier, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM tiers
		WHERE deleted_at IS NULL
		ORDER BY min_spend ASC, rank_order ASC, id ASC
	`

	var tiers []model.Tier
	if err := db.SelectContext(ctx, &tiers, query); err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	if err := r.attachBenefits(ctx, db, tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// ListEligibleTiers returns the tiers the resolver may assign, without benefits
func (r *TierRepository) ListEligibleTiers(ctx context.Context, db DBExecutor) ([]model.Tier, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM tiers
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY min_spend DESC, rank_order ASC, id ASC
	`

	var tiers []model.Tier
	if err := db.SelectContext(ctx, &tiers, query); err != nil {
		return nil, fmt.Errorf("failed to list eligible tiers: %w", err)
	}
	return tiers, nil
}

// GetTier retrieves a non-deleted tier with its benefits
func (r *TierRepository) GetTier(ctx context.Context, db DBExecutor, id int64) (*model.Tier, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM tiers
		WHERE id = $1 AND deleted_at IS NULL
	`

	var tier model.Tier
	if err := db.GetContext(ctx, &tier, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	tiers := []model.Tier{tier}
	if err := r.attachBenefits(ctx, db, tiers); err != nil {
		return nil, err
	}
	return &tiers[0], nil
}

// CreateTier inserts a tier and sets its ID
func (r *TierRepository) CreateTier(ctx context.Context, db DBExecutor, tier *model.Tier, now time.Time) error {
	query := `
		INSERT INTO tiers (name, min_spend, rank_order, evaluation_period, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	tier.CreatedAt = now
	tier.UpdatedAt = now
	err := db.GetContext(ctx, &tier.ID, query,
		tier.Name, tier.MinSpend, tier.RankOrder, tier.EvaluationPeriod, tier.IsActive, now)
	if err != nil {
		return fmt.Errorf("failed to create tier: %w", err)
	}
	return nil
}

// UpdateTier overwrites the editable columns of a non-deleted tier
func (r *TierRepository) UpdateTier(ctx context.Context, db DBExecutor, tier *model.Tier, now time.Time) error {
	query := `
		UPDATE tiers
		SET name = $1, min_spend = $2, rank_order = $3, evaluation_period = $4, is_active = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING created_at
	`

	tier.UpdatedAt = now
	err := db.GetContext(ctx, &tier.CreatedAt, query,
		tier.Name, tier.MinSpend, tier.RankOrder, tier.EvaluationPeriod, tier.IsActive, now, tier.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update tier: %w", err)
	}
	return nil
}

// SoftDeleteTier deactivates a tier and stamps deleted_at. Assignment
// history keeps pointing at the row.
func (r *TierRepository) SoftDeleteTier(ctx context.Context, db DBExecutor, id int64, now time.Time) error {
	query := `
		UPDATE tiers
		SET is_active = FALSE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to delete tier: %w", err)
	}
	if err := requireAffected(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// ReplaceBenefits swaps the benefit list of a tier, keeping the given order
func (r *TierRepository) ReplaceBenefits(ctx context.Context, db DBExecutor, tierID int64, benefits []model.Benefit) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM tier_benefits WHERE tier_id = $1`, tierID); err != nil {
		return fmt.Errorf("failed to clear benefits: %w", err)
	}
	if len(benefits) == 0 {
		return nil
	}

	valuesClause := make([]string, len(benefits))
	args := make([]interface{}, 0, len(benefits)*4)
	for i := range benefits {
		benefits[i].TierID = tierID
		benefits[i].Position = i
		valuesClause[i] = fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
		args = append(args, tierID, benefits[i].Title, benefits[i].Description, i)
	}

	query := fmt.Sprintf(`
		INSERT INTO tier_benefits (tier_id, title, description, position)
		VALUES %s
		RETURNING id
	`, strings.Join(valuesClause, ", "))

	var ids []int64
	if err := db.SelectContext(ctx, &ids, query, args...); err != nil {
		return fmt.Errorf("failed to insert benefits: %w", err)
	}
	for i := range ids {
		if i < len(benefits) {
			benefits[i].ID = ids[i]
		}
	}
	return nil
}

// ListBenefits returns the benefits of one tier in display order. Deleted
// tiers are included so historical assignments can still show them.
func (r *TierRepository) ListBenefits(ctx context.Context, db DBExecutor, tierID int64) ([]model.Benefit, error) {
	query := `
		SELECT id, tier_id, title, description, position
		FROM tier_benefits
		WHERE tier_id = $1
		ORDER BY position, id
	`

	benefits := []model.Benefit{}
	if err := db.SelectContext(ctx, &benefits, query, tierID); err != nil {
		return nil, fmt.Errorf("failed to get benefits: %w", err)
	}
	return benefits, nil
}

// attachBenefits loads benefits for all tiers with a single query
func (r *TierRepository) attachBenefits(ctx context.Context, db DBExecutor, tiers []model.Tier) error {
	if len(tiers) == 0 {
		return nil
	}

	ids := make([]int64, len(tiers))
	byID := make(map[int64]int, len(tiers))
	for i := range tiers {
		ids[i] = tiers[i].ID
		byID[tiers[i].ID] = i
		tiers[i].Benefits = []model.Benefit{}
	}

	query := `
		SELECT id, tier_id, title, description, position
		FROM tier_benefits
		WHERE tier_id = ANY($1)
		ORDER BY tier_id, position, id
	`

	var benefits []model.Benefit
	if err := db.SelectContext(ctx, &benefits, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to get benefits: %w", err)
	}
	for _, b := range benefits {
		if i, ok := byID[b.TierID]; ok {
			tiers[i].Benefits = append(tiers[i].Benefits, b)
		}
	}
	return nil
}
