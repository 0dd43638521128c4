package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Fee struct {
	Name         string          `json:"name"`
	InitialFee   decimal.Decimal `json:"initial_fee"`
	RecurringFee decimal.Decimal `json:"recurring_fee"`
}

type FormElementType string

const (
	FormElementPriceInput  FormElementType = "price_input"
	FormElementPriceSelect FormElementType = "price_select"
)

// FormElement describes one configured field of a payment form. Minimum and
// Options keep the raw strings entered by the merchant.
type FormElement struct {
	ID      string          `json:"id"`
	Type    FormElementType `json:"type"`
	Label   string          `json:"label"`
	Minimum string          `json:"minimum,omitempty"`
	Options string          `json:"options,omitempty"`
}

type PaymentForm struct {
	ID        int64
	Name      string
	Elements  []FormElement
	CreatedAt time.Time
}
