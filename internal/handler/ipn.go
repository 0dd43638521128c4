package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
	"github.com/josh-kwaku/invoicing/internal/service/ipn"
)

const maxIPNBody = 1 << 20

type ipnProcessor interface {
	Process(ctx context.Context, n *ipn.Notification) (ipn.Result, error)
}

type ipnEventRecorder interface {
	Create(ctx context.Context, event *domain.IPNEvent) error
}

type IPNHandler struct {
	processor ipnProcessor
	events    ipnEventRecorder
}

func NewIPNHandler(processor ipnProcessor, events ipnEventRecorder) *IPNHandler {
	return &IPNHandler{processor: processor, events: events}
}

func (h *IPNHandler) ReceivePayPal(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context()).With("gateway", ipn.GatewayID)

	n, err := readNotification(r)
	if err != nil {
		log.Warn("failed to read ipn body", "error", err)
		RespondText(w, ErrIPNRequestFailure.Status, ErrIPNRequestFailure.Message)
		return
	}

	res, err := h.processor.Process(r.Context(), n)
	h.record(r.Context(), n, res, err)

	if err != nil {
		appErr := ipnError(err)
		if appErr == ErrIPNProcessingFailure {
			log.Error("ipn processing failed", "invoice_id", res.InvoiceID, "txn_type", res.TxnType, "error", err)
		} else {
			log.Warn("ipn rejected", "invoice_id", res.InvoiceID, "reason", appErr.Code, "error", err)
		}
		RespondText(w, appErr.Status, appErr.Message)
		return
	}

	if res.Outcome == domain.IPNOutcomeUnsupported {
		RespondText(w, http.StatusOK, "Unsupported IPN type")
		return
	}
	RespondText(w, http.StatusOK, "Processed")
}

// readNotification decodes a urlencoded or multipart body, keeping field order.
func readNotification(r *http.Request) (*ipn.Notification, error) {
	body := io.LimitReader(r.Body, maxIPNBody)

	if mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
		n, err := ipn.ParseMultipart(body, params["boundary"], maxIPNBody)
		if err != nil {
			return nil, fmt.Errorf("readNotification: %w", err)
		}
		return n, nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("readNotification: %w", err)
	}
	n, err := ipn.ParseForm(raw)
	if err != nil {
		return nil, fmt.Errorf("readNotification: %w", err)
	}
	return n, nil
}

// record stores the notification and its outcome. Failures are logged and
// never change the response PayPal receives.
func (h *IPNHandler) record(ctx context.Context, n *ipn.Notification, res ipn.Result, procErr error) {
	log := logging.FromContext(ctx)

	payload, err := json.Marshal(n.Map())
	if err != nil {
		log.Error("failed to encode ipn payload", "error", err)
		return
	}

	event := &domain.IPNEvent{
		ID:            uuid.New(),
		Gateway:       ipn.GatewayID,
		TxnID:         res.TxnID,
		TxnType:       res.TxnType,
		PaymentStatus: res.PaymentStatus,
		Payload:       payload,
		Outcome:       res.Outcome,
		CreatedAt:     time.Now().UTC(),
	}
	if res.InvoiceID != 0 {
		id := res.InvoiceID
		event.InvoiceID = &id
	}
	switch {
	case procErr != nil:
		msg := procErr.Error()
		event.Error = &msg
	case res.GatewayError != "":
		msg := res.GatewayError
		event.Error = &msg
	}

	if err := h.events.Create(ctx, event); err != nil {
		log.Error("failed to store ipn event", "error", err, "invoice_id", res.InvoiceID)
	}
}
