package ipn

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

// The checks below never abort a handler. A mismatch parks the invoice in
// processing for manual review and the notification is still acknowledged.

func (p *Processor) validateCurrency(log *slog.Logger, inv *domain.Invoice, currency string) {
	if !strings.EqualFold(inv.Currency, currency) {
		inv.UpdateStatus(domain.InvoiceStatusProcessing,
			fmt.Sprintf("Validation error: PayPal currencies do not match (code %s).", currency))
		log.Warn("ipn error: currencies do not match", "currency", currency, "invoice_currency", inv.Currency)
		return
	}
	log.Debug("validated ipn currency", "currency", currency)
}

func (p *Processor) validateAmount(log *slog.Logger, inv *domain.Invoice, gross string) {
	amount, err := decimal.NewFromString(strings.TrimSpace(gross))
	if err != nil {
		amount = decimal.Zero
	}

	if inv.Total.StringFixed(2) != amount.StringFixed(2) {
		inv.UpdateStatus(domain.InvoiceStatusProcessing,
			fmt.Sprintf("Validation error: PayPal amounts do not match (gross %s).", gross))
		log.Warn("ipn error: amounts do not match", "gross", gross, "invoice_total", inv.Total.StringFixed(2))
		return
	}
	log.Debug("validated ipn amount", "gross", gross)
}

// validateReceiverEmail records a gateway error on res when the notification
// was addressed to another PayPal account.
func (p *Processor) validateReceiverEmail(log *slog.Logger, inv *domain.Invoice, receiver string, res *Result) {
	if !strings.EqualFold(strings.TrimSpace(receiver), strings.TrimSpace(p.cfg.ReceiverEmail)) {
		log.Error("gateway error: ipn response is for another account",
			"receiver_email", receiver,
			"paypal_email", p.cfg.ReceiverEmail,
		)
		res.GatewayError = fmt.Sprintf("IPN Response is for another account: %s. Your email is %s",
			receiver, p.cfg.ReceiverEmail)
		inv.UpdateStatus(domain.InvoiceStatusProcessing,
			fmt.Sprintf("Validation error: PayPal IPN response from a different email address (%s).", receiver))
		return
	}
	log.Debug("validated paypal email")
}

// businessEmail prefers the business field when it holds a valid address and
// falls back to receiver_email.
func (p *Processor) businessEmail(n *Notification) string {
	if business := n.Get("business"); n.Has("business") && p.validate.Var(business, "required,email") == nil {
		return strings.TrimSpace(business)
	}
	return strings.TrimSpace(n.Get("receiver_email"))
}
