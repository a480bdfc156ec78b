package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the four tables of the service.  Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		code        VARCHAR(64)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id        BIGINT  NOT NULL AUTO_INCREMENT PRIMARY KEY,
		comp_code VARCHAR(64) NOT NULL,
		amt       DOUBLE  NOT NULL,
		paid      BOOLEAN NOT NULL DEFAULT FALSE,
		add_date  DATE    NOT NULL DEFAULT (CURRENT_DATE),
		paid_date DATE    NULL,
		CONSTRAINT invoices_amt_positive CHECK (amt > 0),
		CONSTRAINT invoices_company_fk FOREIGN KEY (comp_code)
			REFERENCES companies (code) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS industries (
		code     VARCHAR(64)  NOT NULL PRIMARY KEY,
		industry VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies_industries (
		id        BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
		comp_code VARCHAR(64) NOT NULL,
		ind_code  VARCHAR(64) NOT NULL,
		CONSTRAINT companies_industries_pair UNIQUE (comp_code, ind_code),
		CONSTRAINT companies_industries_company_fk FOREIGN KEY (comp_code)
			REFERENCES companies (code) ON DELETE CASCADE,
		CONSTRAINT companies_industries_industry_fk FOREIGN KEY (ind_code)
			REFERENCES industries (code) ON DELETE CASCADE
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
