package reports

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAssetBreakdown_GroupsCategories(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := tenantContext("tenant-a")

	rows := sqlmock.NewRows([]string{"category", "amount", "rows_counted"}).
		AddRow("cash", "5000.00", 1).
		AddRow("accounts_receivable", "2000.00", 2).
		AddRow("equipment", "20000.00", 3)
	mock.ExpectQuery(`(?s)WITH LastRows.+FROM\s+assets`).WillReturnRows(rows)

	breakdown, rowCount, err := GetAssetBreakdown(ctx, db, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, "5000", breakdown.Current.Cash.String())
	assert.Equal(t, "2000", breakdown.Current.AccountsReceivable.String())
	assert.Equal(t, "7000", breakdown.Current.Total.String())
	assert.Equal(t, "20000", breakdown.Fixed.Equipment.String())
	assert.Equal(t, "20000", breakdown.Fixed.Total.String())
	assert.Equal(t, "27000", breakdown.Total.String())
	assert.Equal(t, 6, rowCount)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssetBreakdown_FallsBackToInvoices(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := tenantContext("tenant-a")

	mock.ExpectQuery(`(?s)WITH LastRows.+FROM\s+assets`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "rows_counted"}))
	mock.ExpectQuery(`(?s)FROM invoices`).
		WillReturnRows(sqlmock.NewRows([]string{"cash", "receivables", "rows_counted"}).
			AddRow("4000.00", "1500.00", 5))

	breakdown, rowCount, err := GetAssetBreakdown(ctx, db, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, "4000", breakdown.Current.Cash.String())
	assert.Equal(t, "1500", breakdown.Current.AccountsReceivable.String())
	assert.Equal(t, "5500", breakdown.Current.Total.String())
	assert.True(t, breakdown.Fixed.Total.IsZero())
	assert.Equal(t, "5500", breakdown.Total.String())
	assert.Equal(t, 5, rowCount)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLiabilityBreakdown_GroupsCategories(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := tenantContext("tenant-a")

	rows := sqlmock.NewRows([]string{"category", "amount", "rows_counted"}).
		AddRow("accounts_payable", "3000.00", 1).
		AddRow("accrued_expenses", "500.00", 1).
		AddRow("loans", "10000.00", 1).
		AddRow("mortgages", "2500.00", 1)
	mock.ExpectQuery(`(?s)WITH LastRows.+FROM\s+liabilities`).WillReturnRows(rows)

	breakdown, rowCount, err := GetLiabilityBreakdown(ctx, db, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, "3500", breakdown.Current.Total.String())
	assert.Equal(t, "12500", breakdown.LongTerm.Total.String())
	assert.Equal(t, "16000", breakdown.Total.String())
	assert.Equal(t, 4, rowCount)
}

func TestGetLiabilityBreakdown_EmptyIsZero(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := tenantContext("tenant-a")

	mock.ExpectQuery(`(?s)WITH LastRows.+FROM\s+liabilities`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "rows_counted"}))

	breakdown, rowCount, err := GetLiabilityBreakdown(ctx, db, date(2024, time.June, 30))
	require.NoError(t, err)
	assert.True(t, breakdown.Total.IsZero())
	assert.Equal(t, 0, rowCount)
}
