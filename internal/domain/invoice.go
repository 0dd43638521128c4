package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "pending"
	InvoiceStatusPaid       InvoiceStatus = "paid"
	InvoiceStatusProcessing InvoiceStatus = "processing"
	InvoiceStatusOnHold     InvoiceStatus = "on-hold"
	InvoiceStatusCancelled  InvoiceStatus = "cancelled"
	InvoiceStatusRefunded   InvoiceStatus = "refunded"
	InvoiceStatusFailed     InvoiceStatus = "failed"
	InvoiceStatusRenewal    InvoiceStatus = "renewal"
)

var invoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceStatusPending:    "Pending payment",
	InvoiceStatusPaid:       "Paid",
	InvoiceStatusProcessing: "Processing",
	InvoiceStatusOnHold:     "On hold",
	InvoiceStatusCancelled:  "Cancelled",
	InvoiceStatusRefunded:   "Refunded",
	InvoiceStatusFailed:     "Failed",
	InvoiceStatusRenewal:    "Renewal payment",
}

func (s InvoiceStatus) Label() string {
	if l, ok := invoiceStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceStatusLabels[s]
	return ok
}

type InvoiceMode string

const (
	InvoiceModeLive    InvoiceMode = "live"
	InvoiceModeSandbox InvoiceMode = "sandbox"
)

type Invoice struct {
	ID               int64
	Number           string
	ParentID         int64
	Gateway          string
	Mode             InvoiceMode
	Currency         string
	Total            decimal.Decimal
	Status           InvoiceStatus
	TransactionID    string
	RefundedRemotely bool
	Fees             []Fee
	Notes            []InvoiceNote
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InvoiceNote is an entry in an invoice's append-only history. Notes with a
// nil ID have not been persisted yet.
type InvoiceNote struct {
	ID           uuid.UUID
	InvoiceID    int64
	Content      string
	CustomerNote bool
	AddedBy      string
	CreatedAt    time.Time
}

const NoteAuthorSystem = "system"

func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusRenewal
}

func (inv *Invoice) IsRefunded() bool {
	return inv.Status == InvoiceStatusRefunded
}

func (inv *Invoice) IsRenewal() bool {
	return inv.ParentID != 0
}

// DisplayNumber falls back to the id for invoices created without a number.
func (inv *Invoice) DisplayNumber() string {
	if inv.Number != "" {
		return inv.Number
	}
	return fmt.Sprintf("%d", inv.ID)
}

func (inv *Invoice) SetTransactionID(id string) {
	inv.TransactionID = id
}

func (inv *Invoice) FlagRefundedRemotely() {
	inv.RefundedRemotely = true
}

func (inv *Invoice) AddNote(content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	inv.Notes = append(inv.Notes, InvoiceNote{
		InvoiceID: inv.ID,
		Content:   content,
		AddedBy:   NoteAuthorSystem,
		CreatedAt: time.Now().UTC(),
	})
}

// UpdateStatus moves the invoice to status and records the transition with
// reason appended. Setting the current status again is a no-op and the reason
// is dropped.
func (inv *Invoice) UpdateStatus(status InvoiceStatus, reason string) bool {
	if inv.Status == status {
		return false
	}
	note := fmt.Sprintf("Status changed from %s to %s.", inv.Status.Label(), status.Label())
	if reason = strings.TrimSpace(reason); reason != "" {
		note += " " + reason
	}
	inv.Status = status
	inv.AddNote(note)
	return true
}

// MarkPaid records txnID (when given) and moves an unpaid invoice to paid, or
// to renewal for invoices that belong to a subscription parent.
func (inv *Invoice) MarkPaid(txnID, note string, now time.Time) {
	if txnID != "" {
		inv.SetTransactionID(txnID)
	}
	if inv.IsPaid() {
		return
	}

	target := InvoiceStatusPaid
	if inv.IsRenewal() {
		target = InvoiceStatusRenewal
	}
	completed := now
	inv.CompletedAt = &completed
	inv.UpdateStatus(target, note)
}

// PendingNotes returns the notes that still need to be written.
func (inv *Invoice) PendingNotes() []*InvoiceNote {
	var pending []*InvoiceNote
	for i := range inv.Notes {
		if inv.Notes[i].ID == uuid.Nil {
			pending = append(pending, &inv.Notes[i])
		}
	}
	return pending
}
