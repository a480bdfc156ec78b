package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/biztime/internal/model"
)

// IndustryRepo encapsulates the industry and association queries.
type IndustryRepo struct {
	db *sql.DB
}

// NewIndustryRepo constructs an IndustryRepo with the provided DB handle.
func NewIndustryRepo(db *sql.DB) *IndustryRepo {
	return &IndustryRepo{db: db}
}

// ListWithCompanies returns every industry with the names of the companies
// associated with it.  Industries without companies are included.
func (r *IndustryRepo) ListWithCompanies(ctx context.Context) ([]model.IndustryCompanies, error) {
	const q = `SELECT i.industry, c.name
	           FROM industries i
	           LEFT JOIN companies_industries ci ON ci.ind_code = i.code
	           LEFT JOIN companies c ON c.code = ci.comp_code
	           ORDER BY i.code, ci.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Membership
	for rows.Next() {
		var (
			m       model.Membership
			company sql.NullString
		)
		if err := rows.Scan(&m.Industry, &company); err != nil {
			return nil, err
		}
		// company is NULL for an industry nobody joined
		if company.Valid {
			name := company.String
			m.Company = &name
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.GroupIndustries(members), nil
}

// Create inserts a new industry.
func (r *IndustryRepo) Create(ctx context.Context, ind *model.Industry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO industries (code, industry) VALUES (?, ?)`, ind.Code, ind.Industry)
	return err
}

// Associate links a company to an industry.  An existing pair is reported
// as ErrAlreadyAssociated, whether it is found by the lookup or rejected by
// the unique constraint when two requests race past the lookup.
func (r *IndustryRepo) Associate(ctx context.Context, indCode, compCode string) error {
	const qFind = `SELECT id FROM companies_industries WHERE comp_code = ? AND ind_code = ?`
	var id int64
	err := r.db.QueryRowContext(ctx, qFind, compCode, indCode).Scan(&id)
	switch {
	case err == nil:
		return ErrAlreadyAssociated
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	const qInsert = `INSERT INTO companies_industries (comp_code, ind_code) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, qInsert, compCode, indCode); err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyAssociated
		}
		return err
	}
	return nil
}
