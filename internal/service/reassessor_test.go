package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/tier"
)

func TestReassessAllCustomersContinuesPastFailures(t *testing.T) {
	engine, mock := newTestEngine(t, WithWorkers(1))

	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(eligibleTierRows())

	// customer 1 keeps Silver
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SUM\(amount\)`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("600"))
	mock.ExpectQuery("FROM customer_tiers ct").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(10, 1, 2, "Silver", "600", model.Day(testNow).AddDate(0, -1, 0), model.OpenPeriodEnd, testNow))
	mock.ExpectExec("SET total_spend").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET current_tier_id").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// customer 2 fails
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(2)).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	// customer 3 gets their first tier
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`SUM\(amount\)`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("2500"))
	mock.ExpectQuery("FROM customer_tiers ct").WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectQuery("INSERT INTO customer_tiers").
		WithArgs(int64(3), int64(3), "2500", model.Day(testNow), model.OpenPeriodEnd, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec("SET current_tier_id").WithArgs(int64(3), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(3), "0", "tier_change", `Tier changed from "Unassigned" to "Gold"`, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(200))
	mock.ExpectCommit()

	result, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReassessResult{Processed: 2, Changed: 1, Failed: 1}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersTwiceChangesNothingSecondTime(t *testing.T) {
	engine, mock := newTestEngine(t, WithWorkers(1))

	// first run assigns Gold
	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(eligibleTierRows())
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SUM\(amount\)`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("2500"))
	mock.ExpectQuery("FROM customer_tiers ct").WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectQuery("INSERT INTO customer_tiers").
		WithArgs(int64(1), int64(3), "2500", model.Day(testNow), model.OpenPeriodEnd, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec("SET current_tier_id").WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(1), "0", "tier_change", `Tier changed from "Unassigned" to "Gold"`, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(200))
	mock.ExpectCommit()

	// second run over the same ledger only refreshes the open row
	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(eligibleTierRows())
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SUM\(amount\)`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("2500"))
	mock.ExpectQuery("FROM customer_tiers ct").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(11, 1, 3, "Gold", "2500", model.Day(testNow), model.OpenPeriodEnd, testNow))
	mock.ExpectExec("SET total_spend").WithArgs("2500", testNow, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET current_tier_id").WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReassessResult{Processed: 1, Changed: 1}, first)

	second, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReassessResult{Processed: 1}, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersUsesSpendWindow(t *testing.T) {
	engine, mock := newTestEngine(t, WithWorkers(1), WithSpendWindow(tier.WindowYearly))
	since := testNow.AddDate(-1, 0, 0)

	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(eligibleTierRows())
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`created_at >= \$2`).WithArgs(int64(1), since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("300"))
	mock.ExpectQuery("FROM customer_tiers ct").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(10, 1, 2, "Silver", "600", model.Day(testNow).AddDate(-1, 0, 0), model.OpenPeriodEnd, testNow.AddDate(0, -1, 0)))
	mock.ExpectExec("UPDATE customer_tiers SET period_end").
		WithArgs(model.Day(testNow).AddDate(0, 0, -1), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO customer_tiers").
		WithArgs(int64(1), int64(1), "300", model.Day(testNow), model.OpenPeriodEnd, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec("SET current_tier_id").WithArgs(int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(1), "0", "tier_change", `Tier changed from "Silver" to "Bronze"`, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(201))
	mock.ExpectCommit()

	result, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReassessResult{Processed: 1, Changed: 1}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersWithoutTiersLoadsThemOnce(t *testing.T) {
	engine, mock := newTestEngine(t, WithWorkers(1))

	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(sqlmock.NewRows(tierCols))
	for _, id := range []int64{1, 2} {
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
		mock.ExpectQuery(`SUM\(amount\)`).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("50"))
		mock.ExpectQuery("FROM customer_tiers ct").WillReturnRows(sqlmock.NewRows(assignmentCols))
		mock.ExpectCommit()
	}

	result, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReassessResult{Processed: 2}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersNoCustomers(t *testing.T) {
	engine, mock := newTestEngine(t, WithWorkers(4))

	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("is_active = TRUE").WillReturnRows(sqlmock.NewRows(tierCols))

	result, err := engine.ReassessAllCustomers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersListFailure(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery("SELECT id FROM customers ORDER BY id").WillReturnError(errors.New("db down"))

	_, err := engine.ReassessAllCustomers(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassessAllCustomersCancelled(t *testing.T) {
	engine, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ReassessAllCustomers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
