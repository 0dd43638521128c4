package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

// SeedInvoice inserts inv and fills in its generated id. Zero-valued fields
// fall back to a pending live USD PayPal invoice.
func SeedInvoice(t *testing.T, db *sql.DB, inv *domain.Invoice) *domain.Invoice {
	t.Helper()

	if inv.Gateway == "" {
		inv.Gateway = "paypal"
	}
	if inv.Mode == "" {
		inv.Mode = domain.InvoiceModeLive
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	inv.UpdatedAt = inv.CreatedAt

	fees := inv.Fees
	if fees == nil {
		fees = []domain.Fee{}
	}
	feesJSON, err := json.Marshal(fees)
	if err != nil {
		t.Fatalf("marshal fees: %v", err)
	}

	var parentID sql.NullInt64
	if inv.ParentID != 0 {
		parentID = sql.NullInt64{Int64: inv.ParentID, Valid: true}
	}

	err = db.QueryRow(
		`INSERT INTO invoices (number, parent_id, gateway, mode, currency, total, status,
			transaction_id, refunded_remotely, fees, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		inv.Number, parentID, inv.Gateway, inv.Mode, inv.Currency, inv.Total, inv.Status,
		inv.TransactionID, inv.RefundedRemotely, string(feesJSON), inv.CompletedAt, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return inv
}

// SeedSubscription inserts a monthly subscription for the parent invoice.
func SeedSubscription(t *testing.T, db *sql.DB, invoiceID int64, amount decimal.Decimal, createdAt time.Time) *domain.Subscription {
	t.Helper()

	s := &domain.Subscription{
		InvoiceID:       invoiceID,
		Status:          domain.SubscriptionStatusPending,
		Period:          domain.BillingPeriodMonth,
		Frequency:       1,
		RecurringAmount: amount,
		CreatedAt:       createdAt,
		Expiration:      createdAt.AddDate(0, 1, 0),
		UpdatedAt:       createdAt,
	}

	err := db.QueryRow(
		`INSERT INTO subscriptions (invoice_id, status, period, frequency, bill_times,
			recurring_amount, created_at, expiration, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		s.InvoiceID, s.Status, s.Period, s.Frequency, s.BillTimes,
		s.RecurringAmount, s.CreatedAt, s.Expiration, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		t.Fatalf("seed subscription for invoice %d: %v", invoiceID, err)
	}
	return s
}

func SeedPaymentForm(t *testing.T, db *sql.DB, name string, elements []domain.FormElement) *domain.PaymentForm {
	t.Helper()

	raw, err := json.Marshal(elements)
	if err != nil {
		t.Fatalf("marshal form elements: %v", err)
	}

	f := &domain.PaymentForm{Name: name, Elements: elements, CreatedAt: time.Now().UTC()}
	err = db.QueryRow(
		`INSERT INTO payment_forms (name, elements, created_at) VALUES ($1, $2, $3) RETURNING id`,
		f.Name, string(raw), f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		t.Fatalf("seed payment form %s: %v", name, err)
	}
	return f
}

func CountInvoiceNotes(t *testing.T, db *sql.DB, invoiceID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM invoice_notes WHERE invoice_id = $1`, invoiceID).Scan(&count)
	if err != nil {
		t.Fatalf("count notes for invoice %d: %v", invoiceID, err)
	}
	return count
}
