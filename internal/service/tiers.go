package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/repository"
)

// ListTiers returns every non-deleted tier with benefits, threshold ascending
func (e *Engine) ListTiers(ctx context.Context) ([]model.Tier, error) {
	return e.tierRepo.ListTiers(ctx, e.postgres)
}

// UpsertTier creates the tier when ID is zero, otherwise overwrites it.
// The benefit list is replaced as a whole. Existing assignments are left
// alone until the customer's next evaluation.
func (e *Engine) UpsertTier(ctx context.Context, t model.Tier) (*model.Tier, error) {
	if err := validateTier(&t); err != nil {
		return nil, err
	}

	tx, err := e.postgres.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := e.now()
	if t.ID == 0 {
		err = e.tierRepo.CreateTier(ctx, tx, &t, now)
	} else {
		err = e.tierRepo.UpdateTier(ctx, tx, &t, now)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}

	if err := e.tierRepo.ReplaceBenefits(ctx, tx, t.ID, t.Benefits); err != nil {
		return nil, err
	}

	// Answer with the stored row, not the request
	saved, err := e.tierRepo.GetTier(ctx, tx, t.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	e.log.Info("tier saved",
		zap.Int64("tier_id", saved.ID),
		zap.String("name", saved.Name),
		zap.String("min_spend", saved.MinSpend.String()),
		zap.Bool("active", saved.IsActive))
	return saved, nil
}

// DeleteTier soft-deletes a tier: it stops being assignable, disappears from
// ListTiers, and historical assignments keep referring to it. Customers
// holding it move on at their next evaluation.
func (e *Engine) DeleteTier(ctx context.Context, tierID int64) error {
	if tierID <= 0 {
		return fmt.Errorf("%w: tier_id must be positive", ErrInvalidArgument)
	}
	if err := e.tierRepo.SoftDeleteTier(ctx, e.postgres, tierID, e.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTierNotFound
		}
		return err
	}
	e.log.Info("tier deleted", zap.Int64("tier_id", tierID))
	return nil
}

func validateTier(t *model.Tier) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.ID < 0 {
		return fmt.Errorf("%w: tier id must not be negative", ErrInvalidArgument)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: tier name is required", ErrInvalidArgument)
	}
	if t.MinSpend.IsNegative() {
		return fmt.Errorf("%w: min_spend must not be negative", ErrInvalidArgument)
	}
	if t.EvaluationPeriod == "" {
		t.EvaluationPeriod = model.EvaluationYearly
	}
	if !t.EvaluationPeriod.Valid() {
		return fmt.Errorf("%w: unknown evaluation_period %q", ErrInvalidArgument, t.EvaluationPeriod)
	}
	for i := range t.Benefits {
		t.Benefits[i].Title = strings.TrimSpace(t.Benefits[i].Title)
		if t.Benefits[i].Title == "" {
			return fmt.Errorf("%w: benefit %d has no title", ErrInvalidArgument, i+1)
		}
	}
	return nil
}
