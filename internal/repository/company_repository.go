// Package repository contains data access logic separated from HTTP handlers.
// This file holds the company queries: list, detail with related invoices and
// industries, and the write operations.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/biztime/internal/model"
)

// CompanyRepo encapsulates all database queries related to companies.
type CompanyRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCompanyRepo constructs a CompanyRepo with the provided DB handle.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// List returns code and name of every company ordered by code.
func (r *CompanyRepo) List(ctx context.Context) ([]model.CompanySummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name FROM companies ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CompanySummary{} // [] when the table is empty
	for rows.Next() {
		var c model.CompanySummary
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByCode fetches one company plus its invoice ids and industry names.
// It returns ErrCompanyNotFound if no row is found.
func (r *CompanyRepo) GetByCode(ctx context.Context, code string) (*model.CompanyDetail, error) {
	const q = `SELECT code, name, description FROM companies WHERE code = ?`
	var (
		d    model.CompanyDetail
		desc sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&d.Code, &d.Name, &desc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	d.Description = desc.String // NULL description renders as ""

	// Related ids and names come from two follow-up queries; both default to
	// empty slices so the JSON carries [] rather than null.
	ids, err := r.invoiceIDs(ctx, code)
	if err != nil {
		return nil, err
	}
	d.Invoices = ids

	names, err := r.industryNames(ctx, code)
	if err != nil {
		return nil, err
	}
	d.Industries = names
	return &d, nil
}

func (r *CompanyRepo) invoiceIDs(ctx context.Context, code string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM invoices WHERE comp_code = ? ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CompanyRepo) industryNames(ctx context.Context, code string) ([]string, error) {
	const q = `SELECT i.industry
	           FROM companies_industries ci
	           JOIN industries i ON i.code = ci.ind_code
	           WHERE ci.comp_code = ?
	           ORDER BY ci.id`
	rows, err := r.db.QueryContext(ctx, q, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Create inserts a new company.  A duplicate code is returned as
// the driver error unchanged.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	const q = `INSERT INTO companies (code, name, description) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.Code, c.Name, c.Description)
	return err
}

// Update replaces name and description of the company identified by
// c.Code.  It returns ErrCompanyNotFound when no row matches.
func (r *CompanyRepo) Update(ctx context.Context, c *model.Company) error {
	const q = `UPDATE companies SET name = ?, description = ? WHERE code = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.Code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// Delete removes a company.  Invoices and industry associations go with it
// through the ON DELETE CASCADE foreign keys.
func (r *CompanyRepo) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE code = ?`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
