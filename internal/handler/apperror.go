package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

// WithMessage returns a copy of e carrying msg.
func (e *AppError) WithMessage(msg string) *AppError {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvoiceNotFound     = &AppError{http.StatusNotFound, "INVOICE_NOT_FOUND", "Invoice not found"}
	ErrFormNotFound        = &AppError{http.StatusNotFound, "FORM_NOT_FOUND", "Payment form not found"}
	ErrFeeValidationFailed = &AppError{http.StatusUnprocessableEntity, "FEE_VALIDATION_FAILED", "Fee validation failed"}
)

// IPN responses are plain text; PayPal retries anything other than a 200.
var (
	ErrIPNRequestFailure    = &AppError{http.StatusInternalServerError, "IPN_REQUEST_FAILURE", "PayPal IPN Request Failure"}
	ErrIPNInvoiceNotFound   = &AppError{http.StatusInternalServerError, "IPN_INVOICE_NOT_FOUND", "Could not retrieve the associated invoice."}
	ErrIPNGatewayMismatch   = &AppError{http.StatusInternalServerError, "IPN_GATEWAY_MISMATCH", "Invoice not paid via PayPal"}
	ErrIPNProcessingFailure = &AppError{http.StatusInternalServerError, "IPN_PROCESSING_FAILURE", "Could not process the PayPal IPN"}
)
