// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/biztime/internal/model"
)

// Event types published by the API.
const (
	InvoiceCreated = "invoice.created"
	InvoicePaid    = "invoice.paid"
	InvoiceUnpaid  = "invoice.unpaid"
	InvoiceDeleted = "invoice.deleted"
	CompanyDeleted = "company.deleted"
)

// Event is published after a write that downstream consumers may want to
// audit or react to.  It carries enough data to be logged without querying
// the primary database.
type Event struct {
	Type       string  `json:"type"`
	InvoiceID  int64   `json:"invoice_id,omitempty"`
	CompCode   string  `json:"comp_code"`
	Amt        float64 `json:"amt,omitempty"`
	Paid       bool    `json:"paid"`
	PaidDate   string  `json:"paid_date,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

// NewInvoiceEvent builds an event of type typ describing inv.
func NewInvoiceEvent(typ string, inv *model.Invoice) Event {
	ev := Event{
		Type:       typ,
		InvoiceID:  inv.ID,
		CompCode:   inv.CompCode,
		Amt:        inv.Amt,
		Paid:       inv.Paid,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if inv.PaidDate != nil {
		ev.PaidDate = inv.PaidDate.String()
	}
	return ev
}

// NewCompanyDeletedEvent builds the event emitted when a company is removed.
func NewCompanyDeletedEvent(code string) Event {
	return Event{
		Type:       CompanyDeleted,
		CompCode:   code,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// PaymentEventType maps a payment change to the event it produces.  The
// second result is false when the change emits no event.
func PaymentEventType(change model.PaymentChange) (string, bool) {
	switch change {
	case model.PaymentSettled:
		return InvoicePaid, true
	case model.PaymentReopened:
		return InvoiceUnpaid, true
	default:
		return "", false
	}
}
