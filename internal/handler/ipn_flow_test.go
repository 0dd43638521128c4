package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
	"github.com/josh-kwaku/invoicing/internal/service/ipn"
)

type memoryInvoices struct {
	byID map[int64]*domain.Invoice
}

func (m *memoryInvoices) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	inv, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	c := *inv
	c.Notes = append([]domain.InvoiceNote(nil), inv.Notes...)
	return &c, nil
}

func (m *memoryInvoices) GetIDByTransactionID(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("GetIDByTransactionID: %w", domain.ErrNotFound)
}

func (m *memoryInvoices) CountRenewals(context.Context, int64) (int, error) { return 0, nil }

func (m *memoryInvoices) CreateRenewal(context.Context, *domain.Invoice, *domain.Subscription) error {
	return nil
}

func (m *memoryInvoices) Save(_ context.Context, inv *domain.Invoice) error {
	c := *inv
	m.byID[inv.ID] = &c
	return nil
}

type noSubscriptions struct{}

func (noSubscriptions) GetByInvoiceID(context.Context, int64) (*domain.Subscription, error) {
	return nil, fmt.Errorf("GetByInvoiceID: %w", domain.ErrNotFound)
}

func (noSubscriptions) Save(context.Context, *domain.Subscription) error { return nil }

func TestIPNFlow(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantStatus int
		wantBody   string
		wantPaid   bool
	}{
		{name: "verified payment marks the invoice paid", reply: "VERIFIED", wantStatus: http.StatusOK, wantBody: "Processed", wantPaid: true},
		{name: "invalid notification changes nothing", reply: "INVALID", wantStatus: http.StatusInternalServerError, wantBody: "PayPal IPN Request Failure"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var validated url.Values
			paypal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				validated, _ = url.ParseQuery(string(body))
				_, _ = io.WriteString(w, tc.reply)
			}))
			t.Cleanup(paypal.Close)

			invoices := &memoryInvoices{byID: map[int64]*domain.Invoice{
				5: {ID: 5, Gateway: ipn.GatewayID, Mode: domain.InvoiceModeLive, Currency: "USD", Total: decimal.RequireFromString("25"), Status: domain.InvoiceStatusPending},
			}}
			client := ipn.NewPayPalClient(ipn.PayPalClientConfig{LiveURL: paypal.URL, SandboxURL: paypal.URL, Timeout: time.Second, Version: "2.8.0"})
			processor := ipn.NewProcessor(invoices, noSubscriptions{}, client, ipn.Config{
				ReceiverEmail: "shop@example.com",
				Location:      time.UTC,
			}, logging.Discard())
			events := &mockIPNEventRepo{}
			h := NewIPNHandler(processor, events)

			body := "custom=5&txn_type=web_accept&payment_status=Completed&business=shop%40example.com&mc_currency=USD&mc_gross=25.00&txn_id=9XY"
			rr := postIPN(h, body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
			assert.Equal(t, "_notify-validate", validated.Get("cmd"))

			inv := invoices.byID[5]
			if tc.wantPaid {
				assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
				assert.Equal(t, "9XY", inv.TransactionID)
				assert.Equal(t, domain.IPNOutcomeProcessed, events.created.Outcome)
				return
			}
			assert.Equal(t, domain.InvoiceStatusPending, inv.Status)
			assert.Empty(t, inv.TransactionID)
			assert.True(t, strings.Contains(*events.created.Error, "ipn verification failed"))
		})
	}
}
