package ipn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
)

const GatewayID = "paypal"

type TxnType string

const (
	TxnWebAccept     TxnType = "web_accept"
	TxnCart          TxnType = "cart"
	TxnSubscrSignup  TxnType = "subscr_signup"
	TxnSubscrPayment TxnType = "subscr_payment"
	TxnSubscrCancel  TxnType = "subscr_cancel"
	TxnSubscrEOT     TxnType = "subscr_eot"
	TxnSubscrFailed  TxnType = "subscr_failed"
)

type invoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetIDByTransactionID(ctx context.Context, txnID string) (int64, error)
	CountRenewals(ctx context.Context, parentID int64) (int, error)
	CreateRenewal(ctx context.Context, renewal *domain.Invoice, sub *domain.Subscription) error
	Save(ctx context.Context, inv *domain.Invoice) error
}

type subscriptionRepository interface {
	GetByInvoiceID(ctx context.Context, invoiceID int64) (*domain.Subscription, error)
	Save(ctx context.Context, s *domain.Subscription) error
}

type verifier interface {
	Verify(ctx context.Context, n *Notification, sandbox bool) error
}

type Config struct {
	// ReceiverEmail is the merchant PayPal account notifications must be addressed to.
	ReceiverEmail string
	// Sandbox applies to invoices that do not record a mode of their own.
	Sandbox  bool
	Location *time.Location
}

// Result describes how a notification was handled.
type Result struct {
	Outcome       domain.IPNOutcome
	InvoiceID     int64
	TxnType       string
	TxnID         string
	PaymentStatus string
	// GatewayError is set when the notification was applied but failed a
	// check PayPal account owners need to see, such as a foreign receiver.
	GatewayError string
}

type txnHandler func(ctx context.Context, inv *domain.Invoice, n *Notification, res *Result) error

type Processor struct {
	invoices      invoiceRepository
	subscriptions subscriptionRepository
	verifier      verifier
	cfg           Config
	logger        *slog.Logger
	validate      *validator.Validate
	now           func() time.Time
	handlers      map[TxnType]txnHandler
}

func NewProcessor(
	invoices invoiceRepository,
	subscriptions subscriptionRepository,
	verifier verifier,
	cfg Config,
	logger *slog.Logger,
) *Processor {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	p := &Processor{
		invoices:      invoices,
		subscriptions: subscriptions,
		verifier:      verifier,
		cfg:           cfg,
		logger:        logger.With("gateway", GatewayID),
		validate:      validator.New(),
		now:           time.Now,
	}
	p.handlers = map[TxnType]txnHandler{
		TxnWebAccept:     p.handleWebAccept,
		TxnCart:          p.handleWebAccept,
		TxnSubscrSignup:  p.handleSubscrSignup,
		TxnSubscrPayment: p.handleSubscrPayment,
		TxnSubscrCancel:  p.handleSubscrCancel,
		TxnSubscrEOT:     p.handleSubscrEOT,
		TxnSubscrFailed:  p.handleSubscrFailed,
	}
	return p
}

// Process verifies n with PayPal and applies it to the invoice named in its
// custom field. Nothing is written before verification succeeds.
func (p *Processor) Process(ctx context.Context, n *Notification) (Result, error) {
	res := Result{Outcome: domain.IPNOutcomeRejected}
	if n == nil || n.Len() == 0 {
		return res, fmt.Errorf("Process: empty notification: %w", domain.ErrVerificationFailed)
	}
	res.TxnID = n.Get("txn_id")

	inv, err := p.resolveInvoice(ctx, n)
	if err != nil {
		return res, fmt.Errorf("Process: %w", err)
	}
	res.InvoiceID = inv.ID

	sandbox := p.isSandbox(inv)
	if sandbox {
		p.log(ctx).Info("invoice was processed in sandbox, logging posted data",
			"invoice_id", inv.ID, "posted", n.Map())
	}

	if err := p.verifier.Verify(ctx, n, sandbox); err != nil {
		return res, fmt.Errorf("Process: %w", err)
	}

	posted := n.Clone()
	inv, err = p.resolveInvoice(ctx, posted)
	if err != nil {
		res.Outcome = domain.IPNOutcomeError
		return res, fmt.Errorf("Process: %w", err)
	}

	log := p.log(ctx).With("invoice_id", inv.ID)

	if inv.Gateway != GatewayID {
		log.Warn("aborting, invoice was not paid via paypal", "invoice_gateway", inv.Gateway)
		return res, fmt.Errorf("Process: %w", domain.ErrGatewayMismatch)
	}

	status := sanitizeKey(posted.Get("payment_status"))
	txnType := sanitizeKey(posted.Get("txn_type"))
	posted.Set("payment_status", status)
	posted.Set("txn_type", txnType)
	res.PaymentStatus = status
	res.TxnType = txnType

	log.Info("paypal ipn verified", "payment_status", status, "txn_type", txnType)

	handler, ok := p.handlers[TxnType(txnType)]
	if !ok {
		log.Info("aborting, unsupported ipn type", "txn_type", txnType)
		res.Outcome = domain.IPNOutcomeUnsupported
		return res, nil
	}

	if err := handler(ctx, inv, posted, &res); err != nil {
		res.Outcome = domain.IPNOutcomeError
		return res, fmt.Errorf("Process: %s: %w", txnType, err)
	}

	log.Info("done processing ipn", "txn_type", txnType)
	res.Outcome = domain.IPNOutcomeProcessed
	return res, nil
}

func (p *Processor) resolveInvoice(ctx context.Context, n *Notification) (*domain.Invoice, error) {
	custom := strings.TrimSpace(n.Get("custom"))
	if custom == "" {
		p.log(ctx).Warn("could not retrieve the associated invoice", "reason", "missing custom field")
		return nil, fmt.Errorf("resolveInvoice: %w", domain.ErrInvoiceNotFound)
	}

	id, err := strconv.ParseInt(custom, 10, 64)
	if err != nil || id <= 0 {
		p.log(ctx).Warn("could not retrieve the associated invoice", "custom", custom)
		return nil, fmt.Errorf("resolveInvoice: %w", domain.ErrInvoiceNotFound)
	}

	inv, err := p.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.log(ctx).Warn("could not retrieve the associated invoice", "invoice_id", id)
			return nil, fmt.Errorf("resolveInvoice: %w", domain.ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("resolveInvoice: %w", err)
	}

	p.log(ctx).Debug("found invoice", "invoice_id", inv.ID, "number", inv.DisplayNumber())
	return inv, nil
}

func (p *Processor) isSandbox(inv *domain.Invoice) bool {
	switch inv.Mode {
	case domain.InvoiceModeSandbox:
		return true
	case domain.InvoiceModeLive:
		return false
	default:
		return p.cfg.Sandbox
	}
}

// log returns the processor logger tagged with the request id in ctx.
func (p *Processor) log(ctx context.Context) *slog.Logger {
	return logging.Scoped(ctx, p.logger)
}

func (p *Processor) today() time.Time {
	return p.now().In(p.cfg.Location)
}
