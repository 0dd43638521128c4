package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
)

const recentIPNEvents = 20

type invoiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
}

type subscriptionReader interface {
	GetByInvoiceID(ctx context.Context, invoiceID int64) (*domain.Subscription, error)
}

type ipnEventLister interface {
	ListByInvoiceID(ctx context.Context, invoiceID int64, limit int) ([]domain.IPNEvent, error)
}

type InvoiceHandler struct {
	invoices      invoiceReader
	subscriptions subscriptionReader
	events        ipnEventLister
}

func NewInvoiceHandler(invoices invoiceReader, subscriptions subscriptionReader, events ipnEventLister) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, subscriptions: subscriptions, events: events}
}

type noteDTO struct {
	ID           uuid.UUID `json:"id"`
	Content      string    `json:"content"`
	CustomerNote bool      `json:"customer_note"`
	AddedBy      string    `json:"added_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type subscriptionDTO struct {
	ID              int64           `json:"id"`
	ProfileID       string          `json:"profile_id"`
	Status          string          `json:"status"`
	Period          string          `json:"period"`
	Frequency       int             `json:"frequency"`
	BillTimes       int             `json:"bill_times"`
	RecurringAmount decimal.Decimal `json:"recurring_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	Expiration      *time.Time      `json:"expiration,omitempty"`
}

type ipnEventDTO struct {
	ID            uuid.UUID       `json:"id"`
	TxnID         string          `json:"txn_id"`
	TxnType       string          `json:"txn_type"`
	PaymentStatus string          `json:"payment_status"`
	Outcome       string          `json:"outcome"`
	Error         *string         `json:"error,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

type invoiceDTO struct {
	ID               int64            `json:"id"`
	Number           string           `json:"number"`
	ParentID         *int64           `json:"parent_id,omitempty"`
	Gateway          string           `json:"gateway"`
	Mode             string           `json:"mode"`
	Currency         string           `json:"currency"`
	Total            decimal.Decimal  `json:"total"`
	Status           string           `json:"status"`
	StatusLabel      string           `json:"status_label"`
	TransactionID    string           `json:"transaction_id"`
	RefundedRemotely bool             `json:"refunded_remotely"`
	Fees             []domain.Fee     `json:"fees"`
	Notes            []noteDTO        `json:"notes"`
	Subscription     *subscriptionDTO `json:"subscription"`
	IPNEvents        []ipnEventDTO    `json:"ipn_events"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toInvoiceDTO(inv *domain.Invoice, sub *domain.Subscription, events []domain.IPNEvent) invoiceDTO {
	dto := invoiceDTO{
		ID:               inv.ID,
		Number:           inv.DisplayNumber(),
		Gateway:          inv.Gateway,
		Mode:             string(inv.Mode),
		Currency:         inv.Currency,
		Total:            inv.Total,
		Status:           string(inv.Status),
		StatusLabel:      inv.Status.Label(),
		TransactionID:    inv.TransactionID,
		RefundedRemotely: inv.RefundedRemotely,
		Fees:             inv.Fees,
		Notes:            make([]noteDTO, 0, len(inv.Notes)),
		IPNEvents:        make([]ipnEventDTO, 0, len(events)),
		CompletedAt:      inv.CompletedAt,
		CreatedAt:        inv.CreatedAt,
	}
	if dto.Fees == nil {
		dto.Fees = []domain.Fee{}
	}
	if inv.IsRenewal() {
		parentID := inv.ParentID
		dto.ParentID = &parentID
	}

	for _, n := range inv.Notes {
		dto.Notes = append(dto.Notes, noteDTO{
			ID:           n.ID,
			Content:      n.Content,
			CustomerNote: n.CustomerNote,
			AddedBy:      n.AddedBy,
			CreatedAt:    n.CreatedAt,
		})
	}

	if sub != nil {
		s := &subscriptionDTO{
			ID:              sub.ID,
			ProfileID:       sub.ProfileID,
			Status:          string(sub.Status),
			Period:          string(sub.Period),
			Frequency:       sub.Frequency,
			BillTimes:       sub.BillTimes,
			RecurringAmount: sub.RecurringAmount,
			CreatedAt:       sub.CreatedAt,
		}
		if !sub.Expiration.IsZero() {
			exp := sub.Expiration
			s.Expiration = &exp
		}
		dto.Subscription = s
	}

	for _, e := range events {
		dto.IPNEvents = append(dto.IPNEvents, ipnEventDTO{
			ID:            e.ID,
			TxnID:         e.TxnID,
			TxnType:       e.TxnType,
			PaymentStatus: e.PaymentStatus,
			Outcome:       string(e.Outcome),
			Error:         e.Error,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
		})
	}
	return dto
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathInt64(r, "id")
	if !ok {
		RespondAppError(w, ErrInvoiceNotFound, nil)
		return
	}

	inv, err := h.invoices.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrInvoiceNotFound, nil)
			return
		}
		log.Error("failed to load invoice", "invoice_id", id, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	subscriptionInvoiceID := inv.ID
	if inv.IsRenewal() {
		subscriptionInvoiceID = inv.ParentID
	}
	sub, err := h.subscriptions.GetByInvoiceID(r.Context(), subscriptionInvoiceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error("failed to load subscription", "invoice_id", id, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	events, err := h.events.ListByInvoiceID(r.Context(), id, recentIPNEvents)
	if err != nil {
		log.Error("failed to load ipn events", "invoice_id", id, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, toInvoiceDTO(inv, sub, events))
}
