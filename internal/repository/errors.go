package repository

// Sentinel errors shared by the repositories.  They let handlers tell a
// missing row from a store failure without inspecting driver errors.

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrCompanyNotFound is returned when no company matches the given code.
var ErrCompanyNotFound = errors.New("company not found")

// ErrInvoiceNotFound is returned when no invoice matches the given id.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrAlreadyAssociated is returned when a company is already linked to an
// industry. Handlers should translate this into an HTTP 400 response.
var ErrAlreadyAssociated = errors.New("industry already associated with that company")

// MySQL server error numbers the repositories react to.
const (
	errDuplicateEntry = 1062
)

// isDuplicateKey reports whether err is a unique or primary key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}
