// Package model defines the rows and JSON projections of companies,
// invoices and industries.
package model

// Company is a row of the `companies` table.  Code is the immutable
// identifier chosen by the client at creation time.
type Company struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanySummary is the projection used by the company list.
type CompanySummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CompanyDetail is a company together with the ids of its invoices and the
// names of the industries it belongs to.  Both slices are never nil so
// they encode as empty JSON arrays.
type CompanyDetail struct {
	Company
	Invoices   []int64  `json:"invoices"`
	Industries []string `json:"industries"`
}
