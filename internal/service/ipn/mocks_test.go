package ipn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/testutil"
)

type mockInvoiceRepo struct {
	invoices      map[int64]*domain.Invoice
	subscriptions *mockSubscriptionRepo
	nextID        int64
	saves         int
	creates       int
	saveErr       error
	getErr        error
}

func newMockInvoiceRepo(invoices ...*domain.Invoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{invoices: map[int64]*domain.Invoice{}, nextID: 1000}
	for _, inv := range invoices {
		m.invoices[inv.ID] = copyInvoice(inv)
	}
	return m
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (m *mockInvoiceRepo) GetIDByTransactionID(_ context.Context, txnID string) (int64, error) {
	for id, inv := range m.invoices {
		if inv.TransactionID == txnID {
			return id, nil
		}
	}
	return 0, fmt.Errorf("GetIDByTransactionID: %w", domain.ErrNotFound)
}

func (m *mockInvoiceRepo) CountRenewals(_ context.Context, parentID int64) (int, error) {
	n := 0
	for _, inv := range m.invoices {
		if inv.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

// CreateRenewal stores both records or neither, like the repository
// transaction.
func (m *mockInvoiceRepo) CreateRenewal(ctx context.Context, renewal *domain.Invoice, sub *domain.Subscription) error {
	for _, existing := range m.invoices {
		if existing.ParentID != 0 && renewal.TransactionID != "" && existing.TransactionID == renewal.TransactionID {
			return fmt.Errorf("CreateRenewal: %w", domain.ErrDuplicateTransaction)
		}
	}
	if err := m.subscriptions.Save(ctx, sub); err != nil {
		return fmt.Errorf("CreateRenewal: %w", err)
	}

	m.creates++
	m.nextID++
	renewal.ID = m.nextID
	for i := range renewal.Notes {
		renewal.Notes[i].InvoiceID = renewal.ID
	}
	persistNotes(renewal)
	m.invoices[renewal.ID] = copyInvoice(renewal)
	return nil
}

func (m *mockInvoiceRepo) Save(_ context.Context, inv *domain.Invoice) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.invoices[inv.ID]; !ok {
		return fmt.Errorf("Save: %w", domain.ErrNotFound)
	}
	m.saves++
	persistNotes(inv)
	m.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (m *mockInvoiceRepo) get(t *testing.T, id int64) *domain.Invoice {
	t.Helper()
	inv, ok := m.invoices[id]
	if !ok {
		t.Fatalf("invoice %d not stored", id)
	}
	return inv
}

func (m *mockInvoiceRepo) renewalsOf(parentID int64) []*domain.Invoice {
	var out []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.ParentID == parentID {
			out = append(out, inv)
		}
	}
	return out
}

func persistNotes(inv *domain.Invoice) {
	for _, n := range inv.PendingNotes() {
		n.ID = uuid.New()
	}
}

func copyInvoice(inv *domain.Invoice) *domain.Invoice {
	c := *inv
	c.Notes = append([]domain.InvoiceNote(nil), inv.Notes...)
	c.Fees = append([]domain.Fee(nil), inv.Fees...)
	return &c
}

func noteContents(inv *domain.Invoice) []string {
	out := make([]string, 0, len(inv.Notes))
	for _, n := range inv.Notes {
		out = append(out, n.Content)
	}
	return out
}

type mockSubscriptionRepo struct {
	byInvoice map[int64]*domain.Subscription
	saves     int
	saveErr   error
}

func newMockSubscriptionRepo(subs ...*domain.Subscription) *mockSubscriptionRepo {
	m := &mockSubscriptionRepo{byInvoice: map[int64]*domain.Subscription{}}
	for _, s := range subs {
		c := *s
		m.byInvoice[s.InvoiceID] = &c
	}
	return m
}

func (m *mockSubscriptionRepo) GetByInvoiceID(_ context.Context, invoiceID int64) (*domain.Subscription, error) {
	s, ok := m.byInvoice[invoiceID]
	if !ok {
		return nil, fmt.Errorf("GetByInvoiceID: %w", domain.ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (m *mockSubscriptionRepo) Save(_ context.Context, s *domain.Subscription) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	c := *s
	m.byInvoice[s.InvoiceID] = &c
	return nil
}

type mockVerifier struct {
	err     error
	calls   int
	sandbox bool
	got     *Notification
}

func (m *mockVerifier) Verify(_ context.Context, n *Notification, sandbox bool) error {
	m.calls++
	m.sandbox = sandbox
	m.got = n
	return m.err
}

const merchantEmail = "merchant@example.com"

type processorFixture struct {
	processor     *Processor
	invoices      *mockInvoiceRepo
	subscriptions *mockSubscriptionRepo
	verifier      *mockVerifier
	logs          *testutil.LogCapture
}

func newProcessorFixture(t *testing.T, now time.Time, invoices []*domain.Invoice, subs ...*domain.Subscription) *processorFixture {
	t.Helper()

	f := &processorFixture{
		invoices:      newMockInvoiceRepo(invoices...),
		subscriptions: newMockSubscriptionRepo(subs...),
		verifier:      &mockVerifier{},
		logs:          testutil.NewLogCapture(),
	}
	f.invoices.subscriptions = f.subscriptions
	f.processor = NewProcessor(f.invoices, f.subscriptions, f.verifier, Config{
		ReceiverEmail: merchantEmail,
		Location:      time.UTC,
	}, f.logs.Logger())
	f.processor.now = func() time.Time { return now }
	return f
}

func notification(pairs ...string) *Notification {
	n := NewNotification()
	for i := 0; i+1 < len(pairs); i += 2 {
		n.Set(pairs[i], pairs[i+1])
	}
	return n
}

func pendingInvoice(id int64) *domain.Invoice {
	return &domain.Invoice{
		ID:       id,
		Number:   fmt.Sprintf("INV-%04d", id),
		Gateway:  GatewayID,
		Mode:     domain.InvoiceModeLive,
		Currency: "USD",
		Total:    mustDecimal("10.00"),
		Status:   domain.InvoiceStatusPending,
	}
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
