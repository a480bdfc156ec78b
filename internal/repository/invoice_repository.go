package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/biztime/internal/model"
)

// InvoiceRepo encapsulates all database queries related to invoices.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo constructs an InvoiceRepo with the provided DB handle.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

const invoiceColumns = `id, comp_code, amt, paid, add_date, paid_date`

// paymentUpdates holds the UPDATE issued for each kind of payment change.
// Each statement takes (amt, id).
var paymentUpdates = map[model.PaymentChange]string{
	model.PaymentUnchanged: `UPDATE invoices SET amt = ? WHERE id = ?`,
	model.PaymentSettled:   `UPDATE invoices SET amt = ?, paid = TRUE, paid_date = CURRENT_DATE WHERE id = ?`,
	model.PaymentReopened:  `UPDATE invoices SET amt = ?, paid = FALSE, paid_date = NULL WHERE id = ?`,
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s rowScanner) (*model.Invoice, error) {
	var (
		inv      model.Invoice
		addDate  time.Time
		paidDate sql.NullTime
	)
	if err := s.Scan(&inv.ID, &inv.CompCode, &inv.Amt, &inv.Paid, &addDate, &paidDate); err != nil {
		return nil, err
	}
	inv.AddDate = model.NewDate(addDate)
	inv.PaidDate = datePtr(paidDate)
	return &inv, nil
}

func datePtr(t sql.NullTime) *model.Date {
	if !t.Valid {
		return nil
	}
	d := model.NewDate(t.Time)
	return &d
}

// List returns id and company code of every invoice ordered by id.
func (r *InvoiceRepo) List(ctx context.Context) ([]model.InvoiceSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, comp_code FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.InvoiceSummary{}
	for rows.Next() {
		var s model.InvoiceSummary
		if err := rows.Scan(&s.ID, &s.CompCode); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches an invoice joined with its company.  It returns
// ErrInvoiceNotFound if no row is found.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*model.InvoiceDetail, error) {
	const q = `SELECT i.id, i.amt, i.paid, i.add_date, i.paid_date, c.code, c.name, c.description
	           FROM invoices i
	           JOIN companies c ON c.code = i.comp_code
	           WHERE i.id = ?`
	var (
		d        model.InvoiceDetail
		addDate  time.Time
		paidDate sql.NullTime
		desc     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Amt, &d.Paid, &addDate, &paidDate,
		&d.Company.Code, &d.Company.Name, &desc,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	d.AddDate = model.NewDate(addDate)
	d.PaidDate = datePtr(paidDate)
	d.Company.Description = desc.String
	return &d, nil
}

// Create inserts an unpaid invoice for compCode and returns the stored row,
// including the add_date the database defaulted.  An unknown company code
// surfaces as the driver's foreign key error.
func (r *InvoiceRepo) Create(ctx context.Context, compCode string, amt float64) (*model.Invoice, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO invoices (comp_code, amt) VALUES (?, ?)`, compCode, amt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Follow-up SELECT to pick up the defaulted columns.
	return scanInvoice(r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
}

// UpdatePayment sets amt and moves the paid flag to paid.  The current flag is
// read under a row lock and the matching UPDATE from paymentUpdates is
// applied in the same transaction, so paid_date is only stamped on a
// false -> true transition and only cleared on true -> false.  It returns
// the updated row and the change applied, or ErrInvoiceNotFound.
func (r *InvoiceRepo) UpdatePayment(ctx context.Context, id int64, amt float64, paid bool) (*model.Invoice, model.PaymentChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, model.PaymentUnchanged, err
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	var current bool
	if err := tx.QueryRowContext(ctx, `SELECT paid FROM invoices WHERE id = ? FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.PaymentUnchanged, ErrInvoiceNotFound
		}
		return nil, model.PaymentUnchanged, err
	}

	change := model.ResolvePayment(current, paid)
	if _, err := tx.ExecContext(ctx, paymentUpdates[change], amt, id); err != nil {
		return nil, change, err
	}

	inv, err := scanInvoice(tx.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err != nil {
		return nil, change, err
	}
	if err := tx.Commit(); err != nil {
		return nil, change, err
	}
	return inv, change, nil
}

// Delete removes an invoice and returns the deleted row so callers can
// report what went away.  It returns ErrInvoiceNotFound if no row matches.
func (r *InvoiceRepo) Delete(ctx context.Context, id int64) (*model.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}
