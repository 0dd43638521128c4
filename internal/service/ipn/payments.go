package ipn

import (
	"context"
	"fmt"
	"strings"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

// handleWebAccept covers one-time payments, including cart checkouts.
func (p *Processor) handleWebAccept(ctx context.Context, inv *domain.Invoice, n *Notification, res *Result) error {
	log := p.log(ctx).With("invoice_id", inv.ID, "txn_type", n.Get("txn_type"))
	status := n.Get("payment_status")

	p.validateReceiverEmail(log, inv, p.businessEmail(n), res)
	p.validateCurrency(log, inv, n.Get("mc_currency"))

	if txnID := sanitizeText(n.Get("txn_id")); txnID != "" {
		inv.SetTransactionID(txnID)
	}

	switch status {
	case "refunded", "reversed":
		inv.FlagRefundedRemotely()
		if !inv.IsRefunded() {
			inv.UpdateStatus(domain.InvoiceStatusRefunded, n.Get("reason_code"))
		}
		log.Info("invoice refunded via ipn", "reason_code", n.Get("reason_code"))

	case "completed":
		if inv.IsPaid() && inv.Status != domain.InvoiceStatusProcessing {
			log.Info("aborting, invoice is already paid", "number", inv.DisplayNumber())
			break
		}

		p.validateAmount(log, inv, n.Get("mc_gross"))
		inv.MarkPaid(sanitizeText(n.Get("txn_id")), completedNote(n), p.today())
		log.Info("invoice marked as paid")

	case "pending":
		inv.UpdateStatus(domain.InvoiceStatusOnHold,
			fmt.Sprintf("Payment pending (%s).", n.Get("pending_reason")))
		log.Info("invoice marked as payment held", "pending_reason", n.Get("pending_reason"))

	default:
		inv.UpdateStatus(domain.InvoiceStatusFailed,
			fmt.Sprintf("Payment %s via IPN.", sanitizeText(status)))
		log.Info("invoice marked as failed", "payment_status", status)
	}

	if err := p.invoices.Save(ctx, inv); err != nil {
		return fmt.Errorf("handleWebAccept: %w", err)
	}
	return nil
}

// completedNote joins the optional fee and payer status into one note.
func completedNote(n *Notification) string {
	var parts []string
	if fee := sanitizeText(n.Get("mc_fee")); fee != "" && fee != "0" {
		parts = append(parts, fmt.Sprintf("PayPal Transaction Fee: %s.", fee))
	}
	if payer := sanitizeText(n.Get("payer_status")); payer != "" && payer != "0" {
		parts = append(parts, fmt.Sprintf("Buyer status: %s.", payer))
	}
	return strings.Join(parts, " ")
}
