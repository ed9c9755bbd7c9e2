package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenPeriodEnd is the period_end of an assignment that has not been
// superseded. The partial unique index uq_customer_tiers_open depends on it.
var OpenPeriodEnd = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// UnassignedName is displayed when a customer holds no tier.
const UnassignedName = "Unassigned"

// Assignment represents one customer_tiers row
type Assignment struct {
	ID              int64           `db:"id" json:"id"`
	CustomerID      int64           `db:"customer_id" json:"customer_id"`
	TierID          int64           `db:"tier_id" json:"tier_id"`
	TierName        string          `db:"tier_name" json:"tier_name"`
	TotalSpend      decimal.Decimal `db:"total_spend" json:"total_spend"`
	PeriodStart     time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd       time.Time       `db:"period_end" json:"period_end"`
	LastEvaluatedAt time.Time       `db:"last_evaluated_at" json:"last_evaluated_at"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
