package model

// Invoice is a row of the `invoices` table.  PaidDate is nil exactly when
// Paid is false.
type Invoice struct {
	ID       int64   `json:"id"`
	CompCode string  `json:"comp_code"`
	Amt      float64 `json:"amt"`
	Paid     bool    `json:"paid"`
	AddDate  Date    `json:"add_date"`
	PaidDate *Date   `json:"paid_date"`
}

// InvoiceSummary is the projection used by the invoice list.
type InvoiceSummary struct {
	ID       int64  `json:"id"`
	CompCode string `json:"comp_code"`
}

// InvoiceDetail is an invoice joined with its owning company.
type InvoiceDetail struct {
	ID       int64   `json:"id"`
	Amt      float64 `json:"amt"`
	Paid     bool    `json:"paid"`
	AddDate  Date    `json:"add_date"`
	PaidDate *Date   `json:"paid_date"`
	Company  Company `json:"company"`
}

// PaymentChange describes what an update does to the paid flag of an invoice.
type PaymentChange int

const (
	// PaymentUnchanged keeps paid and paid_date as they are; only amt moves.
	PaymentUnchanged PaymentChange = iota
	// PaymentSettled flips an unpaid invoice to paid and stamps paid_date.
	PaymentSettled
	// PaymentReopened flips a paid invoice back to unpaid and clears paid_date.
	PaymentReopened
)

// ResolvePayment decides the transition from the stored paid flag to the
// requested one.
func ResolvePayment(current, requested bool) PaymentChange {
	switch {
	case current == requested:
		return PaymentUnchanged
	case requested:
		return PaymentSettled
	default:
		return PaymentReopened
	}
}

func (p PaymentChange) String() string {
	switch p {
	case PaymentSettled:
		return "settled"
	case PaymentReopened:
		return "reopened"
	default:
		return "unchanged"
	}
}
