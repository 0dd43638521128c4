package fees

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/money"
)

const (
	errInvalidSelection = "You have selected an invalid amount"
	errMinimumFormat    = "The minimum allowed amount is %s"
)

// Submission is a payment form post together with the invoice it is paying,
// if any.
type Submission struct {
	Form    *domain.PaymentForm
	Data    url.Values
	Invoice *domain.Invoice
}

// FeeSet holds the fees of a submission keyed by label, in the order they
// were first added, and the first validation error met while computing them.
type FeeSet struct {
	order  []string
	fees   map[string]domain.Fee
	err    string
	format money.Format
}

func NewSubmissionFees(sub Submission, format money.Format) *FeeSet {
	s := &FeeSet{fees: make(map[string]domain.Fee), format: format}

	if sub.Invoice != nil {
		for _, fee := range sub.Invoice.Fees {
			s.put(fee)
		}
	}

	if sub.Form == nil {
		return s
	}
	for _, el := range sub.Form.Elements {
		switch el.Type {
		case domain.FormElementPriceInput:
			s.processPriceInput(el, sub.Data)
		case domain.FormElementPriceSelect:
			s.processPriceSelect(el, sub.Data)
		}
	}
	return s
}

func (s *FeeSet) processPriceInput(el domain.FormElement, data url.Values) {
	value := data.Get(el.ID)
	if money.IsEmpty(value) {
		return
	}

	amount := money.SanitizeAmount(value, s.format)
	minimum := money.SanitizeAmount(el.Minimum, s.format)
	if amount.LessThan(minimum) {
		s.setError(fmt.Sprintf(errMinimumFormat, minimum.String()))
		return
	}

	s.put(domain.Fee{Name: el.Label, InitialFee: amount, RecurringFee: decimal.Zero})
}

func (s *FeeSet) processPriceSelect(el domain.FormElement, data url.Values) {
	values := data[el.ID]
	if len(values) == 0 || (len(values) == 1 && money.IsEmpty(values[0])) {
		return
	}

	options := parseOptions(el.Options)
	total := decimal.Zero
	for _, token := range selectedTokens(values) {
		if _, ok := options[token]; !ok {
			s.setError(errInvalidSelection)
			return
		}
		total = total.Add(money.SanitizeAmount(token, s.format))
	}

	s.put(domain.Fee{Name: el.Label, InitialFee: total, RecurringFee: decimal.Zero})
}

// put inserts fee, replacing any entry with the same label in place.
func (s *FeeSet) put(fee domain.Fee) {
	if _, ok := s.fees[fee.Name]; !ok {
		s.order = append(s.order, fee.Name)
	}
	s.fees[fee.Name] = fee
}

func (s *FeeSet) setError(msg string) {
	if s.err == "" {
		s.err = msg
	}
}

func (s *FeeSet) Fees() []domain.Fee {
	out := make([]domain.Fee, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fees[name])
	}
	return out
}

func (s *FeeSet) Fee(label string) (domain.Fee, bool) {
	fee, ok := s.fees[label]
	return fee, ok
}

// Error is the first validation error, or "" when the submission is valid.
func (s *FeeSet) Error() string {
	return s.err
}

func (s *FeeSet) InitialTotal() decimal.Decimal {
	total := decimal.Zero
	for _, fee := range s.fees {
		total = total.Add(fee.InitialFee)
	}
	return total
}

func (s *FeeSet) RecurringTotal() decimal.Decimal {
	total := decimal.Zero
	for _, fee := range s.fees {
		total = total.Add(fee.RecurringFee)
	}
	return total
}
