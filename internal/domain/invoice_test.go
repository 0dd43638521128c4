package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     InvoiceStatus
		to       InvoiceStatus
		reason   string
		changed  bool
		wantNote string
	}{
		{
			name:     "transition with reason",
			from:     InvoiceStatusPending,
			to:       InvoiceStatusOnHold,
			reason:   "Payment pending (echeck).",
			changed:  true,
			wantNote: "Status changed from Pending payment to On hold. Payment pending (echeck).",
		},
		{
			name:     "transition without reason",
			from:     InvoiceStatusPending,
			to:       InvoiceStatusFailed,
			changed:  true,
			wantNote: "Status changed from Pending payment to Failed.",
		},
		{
			name:    "same status is a no-op",
			from:    InvoiceStatusProcessing,
			to:      InvoiceStatusProcessing,
			reason:  "ignored",
			changed: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{ID: 7, Status: tc.from}

			got := inv.UpdateStatus(tc.to, tc.reason)

			assert.Equal(t, tc.changed, got)
			assert.Equal(t, tc.to, inv.Status)
			if tc.wantNote == "" {
				assert.Empty(t, inv.Notes)
				return
			}
			require.Len(t, inv.Notes, 1)
			assert.Equal(t, tc.wantNote, inv.Notes[0].Content)
			assert.Equal(t, int64(7), inv.Notes[0].InvoiceID)
			assert.Equal(t, NoteAuthorSystem, inv.Notes[0].AddedBy)
		})
	}
}

func TestInvoice_MarkPaid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending invoice becomes paid", func(t *testing.T) {
		inv := &Invoice{ID: 1, Status: InvoiceStatusPending}
		inv.MarkPaid("TXN-1", "Buyer status: verified.", now)

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "TXN-1", inv.TransactionID)
		require.NotNil(t, inv.CompletedAt)
		assert.Equal(t, now, *inv.CompletedAt)
		require.Len(t, inv.Notes, 1)
		assert.Contains(t, inv.Notes[0].Content, "Buyer status: verified.")
	})

	t.Run("renewal invoice becomes renewal", func(t *testing.T) {
		inv := &Invoice{ID: 2, ParentID: 1, Status: InvoiceStatusPending}
		inv.MarkPaid("", "", now)
		assert.Equal(t, InvoiceStatusRenewal, inv.Status)
		assert.True(t, inv.IsPaid())
	})

	t.Run("processing invoice becomes paid", func(t *testing.T) {
		inv := &Invoice{ID: 3, Status: InvoiceStatusProcessing}
		inv.MarkPaid("TXN-3", "", now)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("already paid keeps status but records txn", func(t *testing.T) {
		inv := &Invoice{ID: 4, Status: InvoiceStatusPaid}
		inv.MarkPaid("TXN-4", "note", now)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "TXN-4", inv.TransactionID)
		assert.Empty(t, inv.Notes)
		assert.Nil(t, inv.CompletedAt)
	})
}

func TestInvoice_PendingNotes(t *testing.T) {
	inv := &Invoice{ID: 9}
	inv.AddNote("first")
	inv.AddNote("   ")
	inv.AddNote("second")

	pending := inv.PendingNotes()
	require.Len(t, pending, 2)
	assert.Equal(t, "first", pending[0].Content)
	assert.Equal(t, "second", pending[1].Content)
}

func TestInvoice_DisplayNumber(t *testing.T) {
	assert.Equal(t, "INV-0042", (&Invoice{ID: 42, Number: "INV-0042"}).DisplayNumber())
	assert.Equal(t, "42", (&Invoice{ID: 42}).DisplayNumber())
}
