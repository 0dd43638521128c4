package ipn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

// subscriptionFor returns the subscription the invoice belongs to, or nil
// when there is none. Renewal invoices resolve through their parent.
func (p *Processor) subscriptionFor(ctx context.Context, log *slog.Logger, inv *domain.Invoice) (*domain.Subscription, error) {
	parentID := inv.ID
	if inv.IsRenewal() {
		parentID = inv.ParentID
	}

	sub, err := p.subscriptions.GetByInvoiceID(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("aborting, subscription for the invoice not found")
			return nil, nil
		}
		return nil, fmt.Errorf("subscriptionFor: %w", err)
	}
	return sub, nil
}

func (p *Processor) handleSubscrSignup(ctx context.Context, inv *domain.Invoice, n *Notification, res *Result) error {
	log := p.log(ctx).With("invoice_id", inv.ID, "txn_type", string(TxnSubscrSignup))
	log.Info("processing subscription signup")

	sub, err := p.subscriptionFor(ctx, log, inv)
	if err != nil || sub == nil {
		return err
	}

	p.validateReceiverEmail(log, inv, p.businessEmail(n), res)
	p.validateCurrency(log, inv, n.Get("mc_currency"))

	subscrID := n.Get("subscr_id")
	sub.Restart(p.today())
	sub.ProfileID = sanitizeText(subscrID)
	sub.Activate()

	if txnID := n.Get("txn_id"); txnID != "" {
		inv.SetTransactionID(txnID)
	}
	inv.MarkPaid("", "", p.today())
	inv.AddNote(fmt.Sprintf("PayPal Subscription ID: %s", subscrID))

	if err := p.subscriptions.Save(ctx, sub); err != nil {
		return fmt.Errorf("handleSubscrSignup: %w", err)
	}
	if err := p.invoices.Save(ctx, inv); err != nil {
		return fmt.Errorf("handleSubscrSignup: %w", err)
	}

	log.Info("subscription started", "subscription_id", sub.ID, "profile_id", sub.ProfileID)
	return nil
}

func (p *Processor) handleSubscrPayment(ctx context.Context, inv *domain.Invoice, n *Notification, _ *Result) error {
	log := p.log(ctx).With("invoice_id", inv.ID, "txn_type", string(TxnSubscrPayment))

	sub, err := p.subscriptionFor(ctx, log, inv)
	if err != nil || sub == nil {
		return err
	}

	txnID := sanitizeText(n.Get("txn_id"))

	if p.isFirstPayment(log, sub, n.Get("payment_date")) {
		inv.SetTransactionID(txnID)
		if err := p.invoices.Save(ctx, inv); err != nil {
			return fmt.Errorf("handleSubscrPayment: %w", err)
		}
		log.Info("first subscription payment recorded", "txn_id", txnID)
		return nil
	}

	log.Info("processing subscription renewal payment", "subscription_id", sub.ID)

	if txnID != "" {
		existing, err := p.invoices.GetIDByTransactionID(ctx, txnID)
		switch {
		case err == nil:
			log.Info("aborting, transaction has already been processed", "txn_id", txnID, "existing_invoice_id", existing)
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("handleSubscrPayment: %w", err)
		}
	}

	parent := inv
	if inv.IsRenewal() {
		parent, err = p.invoices.GetByID(ctx, inv.ParentID)
		if err != nil {
			return fmt.Errorf("handleSubscrPayment: parent: %w", err)
		}
	}

	previous, err := p.invoices.CountRenewals(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("handleSubscrPayment: %w", err)
	}

	renewal := p.newRenewalInvoice(parent, sub, txnID)
	renewal.AddNote(fmt.Sprintf("PayPal Transaction ID: %s", n.Get("txn_id")))
	renewal.AddNote(fmt.Sprintf("PayPal Subscription ID: %s", n.Get("subscr_id")))

	// The parent invoice carried the first payment; this renewal is the newest.
	sub.Renew(previous+2, p.today())

	if err := p.invoices.CreateRenewal(ctx, renewal, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			log.Info("aborting, transaction has already been processed", "txn_id", txnID)
			return nil
		}
		return fmt.Errorf("handleSubscrPayment: %w", err)
	}

	log.Info("subscription renewed",
		"subscription_id", sub.ID,
		"renewal_invoice_id", renewal.ID,
		"status", sub.Status,
	)
	return nil
}

func (p *Processor) newRenewalInvoice(parent *domain.Invoice, sub *domain.Subscription, txnID string) *domain.Invoice {
	now := p.today()
	return &domain.Invoice{
		ParentID:      parent.ID,
		Gateway:       GatewayID,
		Mode:          parent.Mode,
		Currency:      parent.Currency,
		Total:         sub.RecurringAmount,
		Status:        domain.InvoiceStatusRenewal,
		TransactionID: txnID,
		CompletedAt:   &now,
		CreatedAt:     now,
	}
}

// isFirstPayment reports whether the payment landed on the calendar day the
// subscription was created, compared in the site timezone. An unreadable
// payment date counts as a renewal.
func (p *Processor) isFirstPayment(log *slog.Logger, sub *domain.Subscription, paymentDate string) bool {
	paid, err := parsePaymentDate(paymentDate, p.cfg.Location)
	if err != nil {
		log.Warn("could not parse payment_date", "payment_date", paymentDate, "error", err)
		return false
	}
	return calendarKey(sub.CreatedAt, p.cfg.Location) == calendarKey(paid, p.cfg.Location)
}

func (p *Processor) handleSubscrCancel(ctx context.Context, inv *domain.Invoice, _ *Notification, _ *Result) error {
	return p.transitionSubscription(ctx, inv, TxnSubscrCancel, "cancellation", (*domain.Subscription).Cancel)
}

func (p *Processor) handleSubscrEOT(ctx context.Context, inv *domain.Invoice, _ *Notification, _ *Result) error {
	return p.transitionSubscription(ctx, inv, TxnSubscrEOT, "end of life", (*domain.Subscription).Complete)
}

func (p *Processor) handleSubscrFailed(ctx context.Context, inv *domain.Invoice, _ *Notification, _ *Result) error {
	return p.transitionSubscription(ctx, inv, TxnSubscrFailed, "payment failure", (*domain.Subscription).Fail)
}

func (p *Processor) transitionSubscription(
	ctx context.Context,
	inv *domain.Invoice,
	txnType TxnType,
	event string,
	apply func(*domain.Subscription),
) error {
	log := p.log(ctx).With("invoice_id", inv.ID, "txn_type", string(txnType))

	sub, err := p.subscriptionFor(ctx, log, inv)
	if err != nil || sub == nil {
		return err
	}

	log.Info("processing subscription "+event, "subscription_id", sub.ID)
	apply(sub)
	if err := p.subscriptions.Save(ctx, sub); err != nil {
		return fmt.Errorf("transitionSubscription: %w", err)
	}
	log.Info("subscription updated", "subscription_id", sub.ID, "status", sub.Status)
	return nil
}
