// Package loyaltyv1connect wires loyalty.v1.LoyaltyService to connect
// handlers and clients using JSONCodec.
package loyaltyv1connect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kkkkikiki/loyalty/internal/api/loyaltyv1"
)

// LoyaltyServiceName is the fully-qualified name of the LoyaltyService service.
const LoyaltyServiceName = "loyalty.v1.LoyaltyService"

// Fully-qualified procedure names of the LoyaltyService RPCs, used as HTTP
// route paths and as Spec.Procedure in interceptors.
const (
	LoyaltyServiceRecordTransactionProcedure    = "/loyalty.v1.LoyaltyService/RecordTransaction"
	LoyaltyServiceReassessAllCustomersProcedure = "/loyalty.v1.LoyaltyService/ReassessAllCustomers"
	LoyaltyServiceGetCustomerTierProcedure      = "/loyalty.v1.LoyaltyService/GetCustomerTier"
	LoyaltyServiceListTiersProcedure            = "/loyalty.v1.LoyaltyService/ListTiers"
	LoyaltyServiceUpsertTierProcedure           = "/loyalty.v1.LoyaltyService/UpsertTier"
	LoyaltyServiceDeleteTierProcedure           = "/loyalty.v1.LoyaltyService/DeleteTier"
	LoyaltyServiceCreateCustomerProcedure       = "/loyalty.v1.LoyaltyService/CreateCustomer"
	LoyaltyServiceGetCustomerProcedure          = "/loyalty.v1.LoyaltyService/GetCustomer"
	LoyaltyServiceListCustomersProcedure        = "/loyalty.v1.LoyaltyService/ListCustomers"
	LoyaltyServiceListTransactionsProcedure     = "/loyalty.v1.LoyaltyService/ListTransactions"
	LoyaltyServiceGetAssignmentHistoryProcedure = "/loyalty.v1.LoyaltyService/GetAssignmentHistory"
)

// LoyaltyServiceHandler is implemented by the server side of the service.
type LoyaltyServiceHandler interface {
	RecordTransaction(context.Context, *connect.Request[v1.RecordTransactionRequest]) (*connect.Response[v1.RecordTransactionResponse], error)
	ReassessAllCustomers(context.Context, *connect.Request[v1.ReassessAllCustomersRequest]) (*connect.Response[v1.ReassessAllCustomersResponse], error)
	GetCustomerTier(context.Context, *connect.Request[v1.GetCustomerTierRequest]) (*connect.Response[v1.GetCustomerTierResponse], error)
	ListTiers(context.Context, *connect.Request[v1.ListTiersRequest]) (*connect.Response[v1.ListTiersResponse], error)
	UpsertTier(context.Context, *connect.Request[v1.UpsertTierRequest]) (*connect.Response[v1.UpsertTierResponse], error)
	DeleteTier(context.Context, *connect.Request[v1.DeleteTierRequest]) (*connect.Response[v1.DeleteTierResponse], error)
	CreateCustomer(context.Context, *connect.Request[v1.CreateCustomerRequest]) (*connect.Response[v1.CreateCustomerResponse], error)
	GetCustomer(context.Context, *connect.Request[v1.GetCustomerRequest]) (*connect.Response[v1.GetCustomerResponse], error)
	ListCustomers(context.Context, *connect.Request[v1.ListCustomersRequest]) (*connect.Response[v1.ListCustomersResponse], error)
	ListTransactions(context.Context, *connect.Request[v1.ListTransactionsRequest]) (*connect.Response[v1.ListTransactionsResponse], error)
	GetAssignmentHistory(context.Context, *connect.Request[v1.GetAssignmentHistoryRequest]) (*connect.Response[v1.GetAssignmentHistoryResponse], error)
}

// NewLoyaltyServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLoyaltyServiceHandler(svc LoyaltyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	routes := map[string]http.Handler{
		LoyaltyServiceRecordTransactionProcedure:    connect.NewUnaryHandler(LoyaltyServiceRecordTransactionProcedure, svc.RecordTransaction, opts...),
		LoyaltyServiceReassessAllCustomersProcedure: connect.NewUnaryHandler(LoyaltyServiceReassessAllCustomersProcedure, svc.ReassessAllCustomers, opts...),
		LoyaltyServiceGetCustomerTierProcedure:      connect.NewUnaryHandler(LoyaltyServiceGetCustomerTierProcedure, svc.GetCustomerTier, opts...),
		LoyaltyServiceListTiersProcedure:            connect.NewUnaryHandler(LoyaltyServiceListTiersProcedure, svc.ListTiers, opts...),
		LoyaltyServiceUpsertTierProcedure:           connect.NewUnaryHandler(LoyaltyServiceUpsertTierProcedure, svc.UpsertTier, opts...),
		LoyaltyServiceDeleteTierProcedure:           connect.NewUnaryHandler(LoyaltyServiceDeleteTierProcedure, svc.DeleteTier, opts...),
		LoyaltyServiceCreateCustomerProcedure:       connect.NewUnaryHandler(LoyaltyServiceCreateCustomerProcedure, svc.CreateCustomer, opts...),
		LoyaltyServiceGetCustomerProcedure:          connect.NewUnaryHandler(LoyaltyServiceGetCustomerProcedure, svc.GetCustomer, opts...),
		LoyaltyServiceListCustomersProcedure:        connect.NewUnaryHandler(LoyaltyServiceListCustomersProcedure, svc.ListCustomers, opts...),
		LoyaltyServiceListTransactionsProcedure:     connect.NewUnaryHandler(LoyaltyServiceListTransactionsProcedure, svc.ListTransactions, opts...),
		LoyaltyServiceGetAssignmentHistoryProcedure: connect.NewUnaryHandler(LoyaltyServiceGetAssignmentHistoryProcedure, svc.GetAssignmentHistory, opts...),
	}

	return "/" + LoyaltyServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LoyaltyServiceClient is a client for loyalty.v1.LoyaltyService.
type LoyaltyServiceClient struct {
	recordTransaction    *connect.Client[v1.RecordTransactionRequest, v1.RecordTransactionResponse]
	reassessAllCustomers *connect.Client[v1.ReassessAllCustomersRequest, v1.ReassessAllCustomersResponse]
	getCustomerTier      *connect.Client[v1.GetCustomerTierRequest, v1.GetCustomerTierResponse]
	listTiers            *connect.Client[v1.ListTiersRequest, v1.ListTiersResponse]
	upsertTier           *connect.Client[v1.UpsertTierRequest, v1.UpsertTierResponse]
	deleteTier           *connect.Client[v1.DeleteTierRequest, v1.DeleteTierResponse]
	createCustomer       *connect.Client[v1.CreateCustomerRequest, v1.CreateCustomerResponse]
	getCustomer          *connect.Client[v1.GetCustomerRequest, v1.GetCustomerResponse]
	listCustomers        *connect.Client[v1.ListCustomersRequest, v1.ListCustomersResponse]
	listTransactions     *connect.Client[v1.ListTransactionsRequest, v1.ListTransactionsResponse]
	getAssignmentHistory *connect.Client[v1.GetAssignmentHistoryRequest, v1.GetAssignmentHistoryResponse]
}

// NewLoyaltyServiceClient constructs a client for the service at baseURL,
// for example http://localhost:8080.
func NewLoyaltyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LoyaltyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &LoyaltyServiceClient{
		recordTransaction:    connect.NewClient[v1.RecordTransactionRequest, v1.RecordTransactionResponse](httpClient, baseURL+LoyaltyServiceRecordTransactionProcedure, opts...),
		reassessAllCustomers: connect.NewClient[v1.ReassessAllCustomersRequest, v1.ReassessAllCustomersResponse](httpClient, baseURL+LoyaltyServiceReassessAllCustomersProcedure, opts...),
		getCustomerTier:      connect.NewClient[v1.GetCustomerTierRequest, v1.GetCustomerTierResponse](httpClient, baseURL+LoyaltyServiceGetCustomerTierProcedure, opts...),
		listTiers:            connect.NewClient[v1.ListTiersRequest, v1.ListTiersResponse](httpClient, baseURL+LoyaltyServiceListTiersProcedure, opts...),
		upsertTier:           connect.NewClient[v1.UpsertTierRequest, v1.UpsertTierResponse](httpClient, baseURL+LoyaltyServiceUpsertTierProcedure, opts...),
		deleteTier:           connect.NewClient[v1.DeleteTierRequest, v1.DeleteTierResponse](httpClient, baseURL+LoyaltyServiceDeleteTierProcedure, opts...),
		createCustomer:       connect.NewClient[v1.CreateCustomerRequest, v1.CreateCustomerResponse](httpClient, baseURL+LoyaltyServiceCreateCustomerProcedure, opts...),
		getCustomer:          connect.NewClient[v1.GetCustomerRequest, v1.GetCustomerResponse](httpClient, baseURL+LoyaltyServiceGetCustomerProcedure, opts...),
		listCustomers:        connect.NewClient[v1.ListCustomersRequest, v1.ListCustomersResponse](httpClient, baseURL+LoyaltyServiceListCustomersProcedure, opts...),
		listTransactions:     connect.NewClient[v1.ListTransactionsRequest, v1.ListTransactionsResponse](httpClient, baseURL+LoyaltyServiceListTransactionsProcedure, opts...),
		getAssignmentHistory: connect.NewClient[v1.GetAssignmentHistoryRequest, v1.GetAssignmentHistoryResponse](httpClient, baseURL+LoyaltyServiceGetAssignmentHistoryProcedure, opts...),
	}
}

// RecordTransaction calls loyalty.v1.LoyaltyService.RecordTransaction.
func (c *LoyaltyServiceClient) RecordTransaction(ctx context.Context, req *connect.Request[v1.RecordTransactionRequest]) (*connect.Response[v1.RecordTransactionResponse], error) {
	return c.recordTransaction.CallUnary(ctx, req)
}

// ReassessAllCustomers calls loyalty.v1.LoyaltyService.ReassessAllCustomers.
func (c *LoyaltyServiceClient) ReassessAllCustomers(ctx context.Context, req *connect.Request[v1.ReassessAllCustomersRequest]) (*connect.Response[v1.ReassessAllCustomersResponse], error) {
	return c.reassessAllCustomers.CallUnary(ctx, req)
}

// GetCustomerTier calls loyalty.v1.LoyaltyService.GetCustomerTier.
func (c *LoyaltyServiceClient) GetCustomerTier(ctx context.Context, req *connect.Request[v1.GetCustomerTierRequest]) (*connect.Response[v1.GetCustomerTierResponse], error) {
	return c.getCustomerTier.CallUnary(ctx, req)
}

// ListTiers calls loyalty.v1.LoyaltyService.ListTiers.
func (c *LoyaltyServiceClient) ListTiers(ctx context.Context, req *connect.Request[v1.ListTiersRequest]) (*connect.Response[v1.ListTiersResponse], error) {
	return c.listTiers.CallUnary(ctx, req)
}

// UpsertTier calls loyalty.v1.LoyaltyService.UpsertTier.
func (c *LoyaltyServiceClient) UpsertTier(ctx context.Context, req *connect.Request[v1.UpsertTierRequest]) (*connect.Response[v1.UpsertTierResponse], error) {
	return c.upsertTier.CallUnary(ctx, req)
}

// DeleteTier calls loyalty.v1.LoyaltyService.DeleteTier.
func (c *LoyaltyServiceClient) DeleteTier(ctx context.Context, req *connect.Request[v1.DeleteTierRequest]) (*connect.Response[v1.DeleteTierResponse], error) {
	return c.deleteTier.CallUnary(ctx, req)
}

// CreateCustomer calls loyalty.v1.LoyaltyService.CreateCustomer.
func (c *LoyaltyServiceClient) CreateCustomer(ctx context.Context, req *connect.Request[v1.CreateCustomerRequest]) (*connect.Response[v1.CreateCustomerResponse], error) {
	return c.createCustomer.CallUnary(ctx, req)
}

// GetCustomer calls loyalty.v1.LoyaltyService.GetCustomer.
func (c *LoyaltyServiceClient) GetCustomer(ctx context.Context, req *connect.Request[v1.GetCustomerRequest]) (*connect.Response[v1.GetCustomerResponse], error) {
	return c.getCustomer.CallUnary(ctx, req)
}

// ListCustomers calls loyalty.v1.LoyaltyService.ListCustomers.
func (c *LoyaltyServiceClient) ListCustomers(ctx context.Context, req *connect.Request[v1.ListCustomersRequest]) (*connect.Response[v1.ListCustomersResponse], error) {
	return c.listCustomers.CallUnary(ctx, req)
}

// ListTransactions calls loyalty.v1.LoyaltyService.ListTransactions.
func (c *LoyaltyServiceClient) ListTransactions(ctx context.Context, req *connect.Request[v1.ListTransactionsRequest]) (*connect.Response[v1.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

// GetAssignmentHistory calls loyalty.v1.LoyaltyService.GetAssignmentHistory.
func (c *LoyaltyServiceClient) GetAssignmentHistory(ctx context.Context, req *connect.Request[v1.GetAssignmentHistoryRequest]) (*connect.Response[v1.GetAssignmentHistoryResponse], error) {
	return c.getAssignmentHistory.CallUnary(ctx, req)
}

// UnimplementedLoyaltyServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLoyaltyServiceHandler struct{}

func (UnimplementedLoyaltyServiceHandler) RecordTransaction(context.Context, *connect.Request[v1.RecordTransactionRequest]) (*connect.Response[v1.RecordTransactionResponse], error) {
	return nil, unimplemented("RecordTransaction")
}

func (UnimplementedLoyaltyServiceHandler) ReassessAllCustomers(context.Context, *connect.Request[v1.ReassessAllCustomersRequest]) (*connect.Response[v1.ReassessAllCustomersResponse], error) {
	return nil, unimplemented("ReassessAllCustomers")
}

func (UnimplementedLoyaltyServiceHandler) GetCustomerTier(context.Context, *connect.Request[v1.GetCustomerTierRequest]) (*connect.Response[v1.GetCustomerTierResponse], error) {
	return nil, unimplemented("GetCustomerTier")
}

func (UnimplementedLoyaltyServiceHandler) ListTiers(context.Context, *connect.Request[v1.ListTiersRequest]) (*connect.Response[v1.ListTiersResponse], error) {
	return nil, unimplemented("ListTiers")
}

func (UnimplementedLoyaltyServiceHandler) UpsertTier(context.Context, *connect.Request[v1.UpsertTierRequest]) (*connect.Response[v1.UpsertTierResponse], error) {
	return nil, unimplemented("UpsertTier")
}

func (UnimplementedLoyaltyServiceHandler) DeleteTier(context.Context, *connect.Request[v1.DeleteTierRequest]) (*connect.Response[v1.DeleteTierResponse], error) {
	return nil, unimplemented("DeleteTier")
}

func (UnimplementedLoyaltyServiceHandler) CreateCustomer(context.Context, *connect.Request[v1.CreateCustomerRequest]) (*connect.Response[v1.CreateCustomerResponse], error) {
	return nil, unimplemented("CreateCustomer")
}

func (UnimplementedLoyaltyServiceHandler) GetCustomer(context.Context, *connect.Request[v1.GetCustomerRequest]) (*connect.Response[v1.GetCustomerResponse], error) {
	return nil, unimplemented("GetCustomer")
}

func (UnimplementedLoyaltyServiceHandler) ListCustomers(context.Context, *connect.Request[v1.ListCustomersRequest]) (*connect.Response[v1.ListCustomersResponse], error) {
	return nil, unimplemented("ListCustomers")
}

func (UnimplementedLoyaltyServiceHandler) ListTransactions(context.Context, *connect.Request[v1.ListTransactionsRequest]) (*connect.Response[v1.ListTransactionsResponse], error) {
	return nil, unimplemented("ListTransactions")
}

func (UnimplementedLoyaltyServiceHandler) GetAssignmentHistory(context.Context, *connect.Request[v1.GetAssignmentHistoryRequest]) (*connect.Response[v1.GetAssignmentHistoryResponse], error) {
	return nil, unimplemented("GetAssignmentHistory")
}

func unimplemented(method string) error {
	return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("%s.%s is not implemented", LoyaltyServiceName, method))
}
