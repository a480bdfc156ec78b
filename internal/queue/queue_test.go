package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/biztime/internal/model"
)

func TestNewInvoiceEvent(t *testing.T) {
	d := model.NewDate(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	inv := &model.Invoice{ID: 3, CompCode: "apple", Amt: 50, Paid: true, PaidDate: &d}

	ev := NewInvoiceEvent(InvoicePaid, inv)

	assert.Equal(t, InvoicePaid, ev.Type)
	assert.Equal(t, int64(3), ev.InvoiceID)
	assert.Equal(t, "2024-05-20", ev.PaidDate)
	assert.NotEmpty(t, ev.OccurredAt)
}

func TestPaymentEventType(t *testing.T) {
	typ, ok := PaymentEventType(model.PaymentSettled)
	assert.True(t, ok)
	assert.Equal(t, InvoicePaid, typ)

	typ, ok = PaymentEventType(model.PaymentReopened)
	assert.True(t, ok)
	assert.Equal(t, InvoiceUnpaid, typ)

	_, ok = PaymentEventType(model.PaymentUnchanged)
	assert.False(t, ok)
}

func TestFormatEvent(t *testing.T) {
	line := formatEvent(Event{Type: InvoicePaid, InvoiceID: 3, CompCode: "apple", Amt: 50, Paid: true, PaidDate: "2024-05-20", OccurredAt: "2024-05-20T10:00:00Z"})
	assert.Equal(t, "[2024-05-20T10:00:00Z] invoice.paid | invoice_id=3 | comp_code=apple | amt=50.00 | paid=true | paid_date=2024-05-20\n", line)

	line = formatEvent(Event{Type: CompanyDeleted, CompCode: "ibm", OccurredAt: "2024-05-20T10:00:00Z"})
	assert.Equal(t, "[2024-05-20T10:00:00Z] company.deleted | comp_code=ibm\n", line)
}

func TestHandleMessageAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.log")
	for _, ev := range []Event{NewCompanyDeletedEvent("ibm"), NewCompanyDeletedEvent("apple")} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handleMessage(path, body))
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "comp_code=ibm\n")
	assert.Contains(t, string(b), "comp_code=apple\n")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	assert.Error(t, handleMessage(path, []byte("not json")))
	assert.Error(t, handleMessage(path, []byte(`{"comp_code":"x"}`)))
}
