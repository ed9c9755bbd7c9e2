package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a loyalty member in the database.
// CurrentTierID mirrors the open assignment and is only written by the
// assignment store.
type Customer struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Phone         string     `db:"phone" json:"phone"`
	Email         *string    `db:"email" json:"email,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
	CurrentTierID *int64     `db:"current_tier_id" json:"current_tier_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// CustomerSummary is a customer joined with its current assignment
type CustomerSummary struct {
	Customer
	TierName   *string         `db:"tier_name" json:"tier_name"`
	TotalSpend decimal.Decimal `db:"total_spend" json:"total_spend"`
}
