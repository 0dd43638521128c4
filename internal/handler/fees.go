package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/logging"
	"github.com/josh-kwaku/invoicing/internal/service/fees"
)

const invoiceIDField = "invoice_id"

type feeCalculator interface {
	Calculate(ctx context.Context, formID, invoiceID int64, data url.Values) (*fees.FeeSet, error)
}

type FeeHandler struct {
	fees feeCalculator
}

func NewFeeHandler(calculator feeCalculator) *FeeHandler {
	return &FeeHandler{fees: calculator}
}

type feeDTO struct {
	Name         string          `json:"name"`
	InitialFee   decimal.Decimal `json:"initial_fee"`
	RecurringFee decimal.Decimal `json:"recurring_fee"`
}

type feeSetDTO struct {
	Fees           []feeDTO        `json:"fees"`
	InitialTotal   decimal.Decimal `json:"initial_total"`
	RecurringTotal decimal.Decimal `json:"recurring_total"`
}

func toFeeSetDTO(set *fees.FeeSet) feeSetDTO {
	out := feeSetDTO{
		Fees:           make([]feeDTO, 0, len(set.Fees())),
		InitialTotal:   set.InitialTotal(),
		RecurringTotal: set.RecurringTotal(),
	}
	for _, f := range set.Fees() {
		out.Fees = append(out.Fees, feeDTO{Name: f.Name, InitialFee: f.InitialFee, RecurringFee: f.RecurringFee})
	}
	return out
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *FeeHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	formID, ok := pathInt64(r, "id")
	if !ok {
		RespondAppError(w, ErrFormNotFound, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse payment form submission", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var invoiceID int64
	if raw := r.PostForm.Get(invoiceIDField); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondValidationError(w, []FieldError{{Field: invoiceIDField, Message: "must be a positive integer"}})
			return
		}
		invoiceID = id
	}

	set, err := h.fees.Calculate(r.Context(), formID, invoiceID, r.PostForm)
	if err != nil {
		log.Warn("fee calculation failed", "form_id", formID, "invoice_id", invoiceID, "error", err)
		RespondDomainError(w, err)
		return
	}

	if msg := set.Error(); msg != "" {
		RespondAppError(w, ErrFeeValidationFailed.WithMessage(msg), nil)
		return
	}

	RespondSuccess(w, http.StatusOK, toFeeSetDTO(set))
}

