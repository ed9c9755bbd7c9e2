// Package loyaltyv1 holds the request and response messages of
// loyalty.v1.LoyaltyService. Money travels as decimal strings and dates as
// YYYY-MM-DD so clients never round through floating point.
package loyaltyv1

import "time"

type Benefit struct {
	Id          int64   `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type Tier struct {
	Id               int64     `json:"id,omitempty"`
	Name             string    `json:"name"`
	MinSpend         string    `json:"min_spend"`
	RankOrder        int32     `json:"rank_order"`
	EvaluationPeriod string    `json:"evaluation_period,omitempty"`
	IsActive         bool      `json:"is_active"`
	Benefits         []Benefit `json:"benefits"`
}

type Customer struct {
	Id          int64     `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Address     *string   `json:"address,omitempty"`
	TierName    string    `json:"tier_name"`
	TotalSpend  string    `json:"total_spend"`
	CreatedAt   time.Time `json:"created_at"`
}

type Transaction struct {
	Id         int64     `json:"id"`
	CustomerId int64     `json:"customer_id"`
	Amount     string    `json:"amount"`
	Kind       string    `json:"kind"`
	Reference  string    `json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
}

type Assignment struct {
	Id              int64     `json:"id"`
	CustomerId      int64     `json:"customer_id"`
	TierId          int64     `json:"tier_id"`
	TierName        string    `json:"tier_name"`
	TotalSpend      string    `json:"total_spend"`
	PeriodStart     string    `json:"period_start"`
	PeriodEnd       string    `json:"period_end"`
	LastEvaluatedAt time.Time `json:"last_evaluated_at"`
}

type CustomerTier struct {
	TierName    string    `json:"tier_name"`
	TotalSpend  string    `json:"total_spend"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	Benefits    []Benefit `json:"benefits"`
}

type RecordTransactionRequest struct {
	CustomerId int64  `json:"customer_id"`
	Amount     string `json:"amount"`
	Reference  string `json:"reference"`
}

type RecordTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
	// Assignment is null when no tier is configured
	Assignment  *Assignment `json:"assignment"`
	TierChanged bool        `json:"tier_changed"`
}

type ReassessAllCustomersRequest struct{}

type ReassessAllCustomersResponse struct {
	CustomersProcessed int32 `json:"customers_processed"`
	CustomersChanged   int32 `json:"customers_changed"`
	CustomersFailed    int32 `json:"customers_failed"`
}

type GetCustomerTierRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type GetCustomerTierResponse struct {
	// Tier is null for an unassigned customer
	Tier *CustomerTier `json:"tier"`
}

type ListTiersRequest struct{}

type ListTiersResponse struct {
	Tiers []Tier `json:"tiers"`
}

type UpsertTierRequest struct {
	Tier *Tier `json:"tier"`
}

type UpsertTierResponse struct {
	Tier *Tier `json:"tier"`
}

type DeleteTierRequest struct {
	TierId int64 `json:"tier_id"`
}

type DeleteTierResponse struct{}

type CreateCustomerRequest struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        *string `json:"email,omitempty"`
	DateOfBirth  string  `json:"date_of_birth,omitempty"`
	Address      *string `json:"address,omitempty"`
	InitialSpend string  `json:"initial_spend,omitempty"`
}

type CreateCustomerResponse struct {
	Customer   *Customer   `json:"customer"`
	Assignment *Assignment `json:"assignment"`
}

type GetCustomerRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type GetCustomerResponse struct {
	Customer *Customer `json:"customer"`
}

type ListCustomersRequest struct{}

type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
}

type ListTransactionsRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetAssignmentHistoryRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type GetAssignmentHistoryResponse struct {
	Assignments []Assignment `json:"assignments"`
}
