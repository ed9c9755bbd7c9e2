package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/loyalty/internal/model"
)

func TestCreateCustomerWithInitialSpend(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Ada", "+15550100", nil, nil, nil, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(42), "750", "initial", "Initial spending from import", testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(eligibleTierRows())
	mock.ExpectQuery(`SUM\(amount\)`).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("750"))
	mock.ExpectQuery("FROM customer_tiers ct").WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectQuery("INSERT INTO customer_tiers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec("SET current_tier_id").WithArgs(int64(2), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(42), "0", "tier_change", `Tier changed from "Unassigned" to "Silver"`, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	customer, assignment, err := engine.CreateCustomer(context.Background(), NewCustomer{
		Name:         " Ada ",
		Phone:        "+15550100",
		InitialSpend: decimal.NewFromInt(750),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), customer.ID)
	require.NotNil(t, customer.CurrentTierID)
	assert.Equal(t, int64(2), *customer.CurrentTierID)
	require.NotNil(t, assignment)
	assert.Equal(t, "Silver", assignment.TierName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerWithoutTiersStaysUnassigned(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(sqlmock.NewRows(tierCols))
	mock.ExpectQuery(`SUM\(amount\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("0"))
	mock.ExpectQuery("FROM customer_tiers ct").WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectCommit()

	customer, assignment, err := engine.CreateCustomer(context.Background(), NewCustomer{Name: "Bo", Phone: "+15550101"})
	require.NoError(t, err)
	assert.Nil(t, assignment)
	assert.Nil(t, customer.CurrentTierID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerDuplicatePhone(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_phone_key"})
	mock.ExpectRollback()

	_, _, err := engine.CreateCustomer(context.Background(), NewCustomer{Name: "Ada", Phone: "+15550100"})
	assert.ErrorIs(t, err, ErrDuplicatePhone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := engine.CreateCustomer(ctx, NewCustomer{Phone: "+15550100"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = engine.CreateCustomer(ctx, NewCustomer{Name: "Ada"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = engine.CreateCustomer(ctx, NewCustomer{Name: "Ada", Phone: "1", InitialSpend: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetCustomerTier(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery("FROM customers").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "email", "date_of_birth", "address", "current_tier_id", "created_at"}).
			AddRow(1, "Ada", "+15550100", nil, nil, nil, 2, testNow))
	mock.ExpectQuery("FROM customer_tiers ct").WithArgs(int64(1), model.Day(testNow)).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(10, 1, 2, "Silver", "600", model.Day(testNow), model.OpenPeriodEnd, testNow))
	mock.ExpectQuery("FROM tier_benefits").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tier_id", "title", "description", "position"}).
			AddRow(31, 2, "Free shipping", nil, 0))

	ct, err := engine.GetCustomerTier(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, "Silver", ct.TierName)
	assert.True(t, ct.TotalSpend.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, model.OpenPeriodEnd, ct.PeriodEnd)
	require.Len(t, ct.Benefits, 1)
	assert.Equal(t, "Free shipping", ct.Benefits[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerTierUnknownCustomer(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery("FROM customers").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := engine.GetCustomerTier(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
