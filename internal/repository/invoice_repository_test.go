package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/biztime/internal/model"
)

var (
	invoiceCols = []string{"id", "comp_code", "amt", "paid", "add_date", "paid_date"}
	addDay      = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	paidDay     = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
)

func TestInvoiceRepoList(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, comp_code FROM invoices ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "comp_code"}).
			AddRow(int64(1), "apple").
			AddRow(int64(2), "ibm"))

	got, err := NewInvoiceRepo(db).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.InvoiceSummary{{ID: 1, CompCode: "apple"}, {ID: 2, CompCode: "ibm"}}, got)
}

func TestInvoiceRepoGetByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("JOIN companies c ON c.code = i.comp_code").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amt", "paid", "add_date", "paid_date", "code", "name", "description"}).
			AddRow(int64(4), 300.0, true, addDay, paidDay, "apple", "Apple Computer", "Maker of OSX."))

	got, err := NewInvoiceRepo(db).GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, 300.0, got.Amt)
	assert.True(t, got.Paid)
	assert.Equal(t, "2024-05-01", got.AddDate.String())
	require.NotNil(t, got.PaidDate)
	assert.Equal(t, "2024-05-20", got.PaidDate.String())
	assert.Equal(t, model.Company{Code: "apple", Name: "Apple Computer", Description: "Maker of OSX."}, got.Company)
}

func TestInvoiceRepoGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM invoices i").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewInvoiceRepo(db).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices (comp_code, amt) VALUES (?, ?)")).
		WithArgs("apple", 100.0).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, comp_code, amt, paid, add_date, paid_date FROM invoices WHERE id = ?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(int64(12), "apple", 100.0, false, addDay, nil))

	got, err := NewInvoiceRepo(db).Create(context.Background(), "apple", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
	assert.Equal(t, "apple", got.CompCode)
	assert.False(t, got.Paid)
	assert.Nil(t, got.PaidDate)
	assert.Equal(t, "2024-05-01", got.AddDate.String())
}

func TestInvoiceRepoCreateUnknownCompany(t *testing.T) {
	db, mock := newMock(t)
	fk := errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails")
	mock.ExpectExec("INSERT INTO invoices").WithArgs("nope", 10.0).WillReturnError(fk)

	_, err := NewInvoiceRepo(db).Create(context.Background(), "nope", 10)
	assert.ErrorIs(t, err, fk)
}

func expectPaidLookup(mock sqlmock.Sqlmock, id int64, paid bool) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT paid FROM invoices WHERE id = ? FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"paid"}).AddRow(paid))
}

func TestInvoiceRepoUpdatePaymentSameStateOnlyTouchesAmount(t *testing.T) {
	db, mock := newMock(t)
	expectPaidLookup(mock, 3, false)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET amt = ? WHERE id = ?")).
		WithArgs(50.0, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(int64(3), "apple", 50.0, false, addDay, nil))
	mock.ExpectCommit()

	inv, change, err := NewInvoiceRepo(db).UpdatePayment(context.Background(), 3, 50, false)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentUnchanged, change)
	assert.False(t, inv.Paid)
	assert.Nil(t, inv.PaidDate)
}

func TestInvoiceRepoUpdatePaymentSettles(t *testing.T) {
	db, mock := newMock(t)
	expectPaidLookup(mock, 3, false)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET amt = ?, paid = TRUE, paid_date = CURRENT_DATE WHERE id = ?")).
		WithArgs(50.0, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(int64(3), "apple", 50.0, true, addDay, paidDay))
	mock.ExpectCommit()

	inv, change, err := NewInvoiceRepo(db).UpdatePayment(context.Background(), 3, 50, true)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSettled, change)
	assert.True(t, inv.Paid)
	require.NotNil(t, inv.PaidDate)
	assert.Equal(t, "2024-05-20", inv.PaidDate.String())
}

func TestInvoiceRepoUpdatePaymentReopens(t *testing.T) {
	db, mock := newMock(t)
	expectPaidLookup(mock, 3, true)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET amt = ?, paid = FALSE, paid_date = NULL WHERE id = ?")).
		WithArgs(75.5, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(int64(3), "apple", 75.5, false, addDay, nil))
	mock.ExpectCommit()

	inv, change, err := NewInvoiceRepo(db).UpdatePayment(context.Background(), 3, 75.5, false)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentReopened, change)
	assert.False(t, inv.Paid)
	assert.Nil(t, inv.PaidDate)
}

func TestInvoiceRepoUpdatePaymentNotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT paid FROM invoices").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"paid"}))
	mock.ExpectRollback()

	_, _, err := NewInvoiceRepo(db).UpdatePayment(context.Background(), 404, 10, true)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceRepoUpdatePaymentStoreErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)
	expectPaidLookup(mock, 3, false)
	check := errors.New("Error 3819 (HY000): Check constraint 'invoices_amt_positive' is violated.")
	mock.ExpectExec("UPDATE invoices").WillReturnError(check)
	mock.ExpectRollback()

	_, _, err := NewInvoiceRepo(db).UpdatePayment(context.Background(), 3, -1, false)
	assert.ErrorIs(t, err, check)
}

func TestInvoiceRepoDelete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(int64(5), "ibm", 400.0, false, addDay, nil))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices WHERE id = ?")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inv, err := NewInvoiceRepo(db).Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ibm", inv.CompCode)
}

func TestInvoiceRepoDeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(invoiceCols))

	_, err := NewInvoiceRepo(db).Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
