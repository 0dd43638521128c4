package fees

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
	"github.com/josh-kwaku/invoicing/internal/money"
)

type formRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentForm, error)
}

type invoiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
}

type Service struct {
	forms    formRepository
	invoices invoiceReader
	format   money.Format
}

func NewService(forms formRepository, invoices invoiceReader, format money.Format) *Service {
	return &Service{forms: forms, invoices: invoices, format: format}
}

// Calculate loads the form and, when invoiceID is non-zero, the invoice being
// paid, then computes the fees for the posted data. A returned FeeSet may
// still carry a validation error.
func (s *Service) Calculate(ctx context.Context, formID, invoiceID int64, data url.Values) (*FeeSet, error) {
	log := logging.FromContext(ctx)

	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("Calculate: %w", err)
	}

	sub := Submission{Form: form, Data: data}
	if invoiceID != 0 {
		inv, err := s.invoices.GetByID(ctx, invoiceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("Calculate: %w", domain.ErrInvoiceNotFound)
			}
			return nil, fmt.Errorf("Calculate: %w", err)
		}
		sub.Invoice = inv
	}

	set := NewSubmissionFees(sub, s.format)
	if msg := set.Error(); msg != "" {
		log.Info("payment form fees rejected", "form_id", formID, "reason", msg)
	} else {
		log.Debug("payment form fees calculated", "form_id", formID, "fees", len(set.Fees()), "initial_total", set.InitialTotal().String())
	}
	return set, nil
}
