package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvoiceNotFound      = errors.New("could not retrieve the associated invoice")
	ErrVerificationFailed   = errors.New("ipn verification failed")
	ErrGatewayMismatch      = errors.New("invoice not paid via this gateway")
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrFormNotFound         = errors.New("payment form not found")
)
