package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	v1 "github.com/kkkkikiki/loyalty/internal/api/loyaltyv1"
	"github.com/kkkkikiki/loyalty/internal/api/loyaltyv1/loyaltyv1connect"
	"github.com/kkkkikiki/loyalty/internal/model"
)

var _ loyaltyv1connect.LoyaltyServiceHandler = (*LoyaltyServer)(nil)

// LoyaltyServer implements the loyalty service on top of an Engine
type LoyaltyServer struct {
	engine *Engine
}

// NewLoyaltyServer creates a new LoyaltyServer instance
func NewLoyaltyServer(engine *Engine) *LoyaltyServer {
	return &LoyaltyServer{engine: engine}
}

// RecordTransaction appends a purchase and re-evaluates the customer's tier
func (s *LoyaltyServer) RecordTransaction(
	ctx context.Context,
	req *connect.Request[v1.RecordTransactionRequest],
) (*connect.Response[v1.RecordTransactionResponse], error) {
	amount, err := parseAmount("amount", req.Msg.Amount, false)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := s.engine.RecordTransaction(ctx, req.Msg.CustomerId, amount, req.Msg.Reference)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&v1.RecordTransactionResponse{
		Transaction: toTransactionMessage(result.Transaction),
		Assignment:  toAssignmentMessage(result.Assignment),
		TierChanged: result.Changed,
	}), nil
}

// ReassessAllCustomers runs the batch reassessment synchronously
func (s *LoyaltyServer) ReassessAllCustomers(
	ctx context.Context,
	_ *connect.Request[v1.ReassessAllCustomersRequest],
) (*connect.Response[v1.ReassessAllCustomersResponse], error) {
	result, err := s.engine.ReassessAllCustomers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&v1.ReassessAllCustomersResponse{
		CustomersProcessed: int32(result.Processed),
		CustomersChanged:   int32(result.Changed),
		CustomersFailed:    int32(result.Failed),
	}), nil
}

// GetCustomerTier returns the customer's current tier and benefits
func (s *LoyaltyServer) GetCustomerTier(
	ctx context.Context,
	req *connect.Request[v1.GetCustomerTierRequest],
) (*connect.Response[v1.GetCustomerTierResponse], error) {
	ct, err := s.engine.GetCustomerTier(ctx, req.Msg.CustomerId)
	if err != nil {
		return nil, toConnectError(err)
	}

	res := &v1.GetCustomerTierResponse{}
	if ct != nil {
		res.Tier = &v1.CustomerTier{
			TierName:    ct.TierName,
			TotalSpend:  ct.TotalSpend.String(),
			PeriodStart: formatDate(ct.PeriodStart),
			PeriodEnd:   formatDate(ct.PeriodEnd),
			Benefits:    toBenefitMessages(ct.Benefits),
		}
	}
	return connect.NewResponse(res), nil
}

// ListTiers returns all non-deleted tiers
func (s *LoyaltyServer) ListTiers(
	ctx context.Context,
	_ *connect.Request[v1.ListTiersRequest],
) (*connect.Response[v1.ListTiersResponse], error) {
	tiers, err := s.engine.ListTiers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]v1.Tier, 0, len(tiers))
	for i := range tiers {
		out = append(out, toTierMessage(&tiers[i]))
	}
	return connect.NewResponse(&v1.ListTiersResponse{Tiers: out}), nil
}

// UpsertTier creates or updates a tier definition
func (s *LoyaltyServer) UpsertTier(
	ctx context.Context,
	req *connect.Request[v1.UpsertTierRequest],
) (*connect.Response[v1.UpsertTierResponse], error) {
	t, err := toTierModel(req.Msg.Tier)
	if err != nil {
		return nil, toConnectError(err)
	}

	saved, err := s.engine.UpsertTier(ctx, t)
	if err != nil {
		return nil, toConnectError(err)
	}

	msg := toTierMessage(saved)
	return connect.NewResponse(&v1.UpsertTierResponse{Tier: &msg}), nil
}

// DeleteTier soft-deletes a tier
func (s *LoyaltyServer) DeleteTier(
	ctx context.Context,
	req *connect.Request[v1.DeleteTierRequest],
) (*connect.Response[v1.DeleteTierResponse], error) {
	if err := s.engine.DeleteTier(ctx, req.Msg.TierId); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.DeleteTierResponse{}), nil
}

// CreateCustomer registers a customer and assigns the initial tier
func (s *LoyaltyServer) CreateCustomer(
	ctx context.Context,
	req *connect.Request[v1.CreateCustomerRequest],
) (*connect.Response[v1.CreateCustomerResponse], error) {
	initial, err := parseAmount("initial_spend", req.Msg.InitialSpend, true)
	if err != nil {
		return nil, toConnectError(err)
	}
	dob, err := parseDate("date_of_birth", req.Msg.DateOfBirth)
	if err != nil {
		return nil, toConnectError(err)
	}

	customer, assignment, err := s.engine.CreateCustomer(ctx, NewCustomer{
		Name:         req.Msg.Name,
		Phone:        req.Msg.Phone,
		Email:        req.Msg.Email,
		DateOfBirth:  dob,
		Address:      req.Msg.Address,
		InitialSpend: initial,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	tierName, spend := model.UnassignedName, initial
	if assignment != nil {
		tierName, spend = assignment.TierName, assignment.TotalSpend
	}
	return connect.NewResponse(&v1.CreateCustomerResponse{
		Customer:   toCustomerMessage(customer, tierName, spend),
		Assignment: toAssignmentMessage(assignment),
	}), nil
}

// GetCustomer returns one customer with tier and spend
func (s *LoyaltyServer) GetCustomer(
	ctx context.Context,
	req *connect.Request[v1.GetCustomerRequest],
) (*connect.Response[v1.GetCustomerResponse], error) {
	summary, err := s.engine.GetCustomer(ctx, req.Msg.CustomerId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.GetCustomerResponse{Customer: toCustomerSummaryMessage(summary)}), nil
}

// ListCustomers returns all customers, newest first
func (s *LoyaltyServer) ListCustomers(
	ctx context.Context,
	_ *connect.Request[v1.ListCustomersRequest],
) (*connect.Response[v1.ListCustomersResponse], error) {
	summaries, err := s.engine.ListCustomers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]v1.Customer, 0, len(summaries))
	for i := range summaries {
		out = append(out, *toCustomerSummaryMessage(&summaries[i]))
	}
	return connect.NewResponse(&v1.ListCustomersResponse{Customers: out}), nil
}

// ListTransactions returns a customer's ledger, newest first
func (s *LoyaltyServer) ListTransactions(
	ctx context.Context,
	req *connect.Request[v1.ListTransactionsRequest],
) (*connect.Response[v1.ListTransactionsResponse], error) {
	txns, err := s.engine.ListTransactions(ctx, req.Msg.CustomerId)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]v1.Transaction, 0, len(txns))
	for i := range txns {
		out = append(out, *toTransactionMessage(&txns[i]))
	}
	return connect.NewResponse(&v1.ListTransactionsResponse{Transactions: out}), nil
}

// GetAssignmentHistory returns every assignment the customer has held
func (s *LoyaltyServer) GetAssignmentHistory(
	ctx context.Context,
	req *connect.Request[v1.GetAssignmentHistoryRequest],
) (*connect.Response[v1.GetAssignmentHistoryResponse], error) {
	history, err := s.engine.GetAssignmentHistory(ctx, req.Msg.CustomerId)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]v1.Assignment, 0, len(history))
	for i := range history {
		out = append(out, *toAssignmentMessage(&history[i]))
	}
	return connect.NewResponse(&v1.GetAssignmentHistoryResponse{Assignments: out}), nil
}

// toConnectError maps engine errors onto connect codes
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrTierNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrDuplicatePhone):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ErrConcurrentUpdate):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
