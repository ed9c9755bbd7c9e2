package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EvaluationPeriod is the reassessment cadence shown for a tier.
type EvaluationPeriod string

const (
	EvaluationMonthly   EvaluationPeriod = "monthly"
	EvaluationQuarterly EvaluationPeriod = "quarterly"
	EvaluationYearly    EvaluationPeriod = "yearly"
)

// Valid reports whether p is a known evaluation period.
func (p EvaluationPeriod) Valid() bool {
	switch p {
	case EvaluationMonthly, EvaluationQuarterly, EvaluationYearly:
		return true
	}
	return false
}

// Tier represents a membership level in the database
type Tier struct {
	ID               int64            `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	MinSpend         decimal.Decimal  `db:"min_spend" json:"min_spend"`
	RankOrder        int              `db:"rank_order" json:"rank_order"`
	EvaluationPeriod EvaluationPeriod `db:"evaluation_period" json:"evaluation_period"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	DeletedAt        *time.Time       `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`

	Benefits []Benefit `db:"-" json:"benefits"`
}

// Eligible reports whether the tier can be assigned to customers.
func (t *Tier) Eligible() bool {
	return t.IsActive && t.DeletedAt == nil
}

// Benefit is a display-only perk attached to a tier
type Benefit struct {
	ID          int64   `db:"id" json:"id"`
	TierID      int64   `db:"tier_id" json:"tier_id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	Position    int     `db:"position" json:"position"`
}
