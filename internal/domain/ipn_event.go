package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type IPNOutcome string

const (
	IPNOutcomeProcessed   IPNOutcome = "processed"
	IPNOutcomeUnsupported IPNOutcome = "unsupported"
	IPNOutcomeRejected    IPNOutcome = "rejected"
	IPNOutcomeError       IPNOutcome = "error"
)

type IPNEvent struct {
	ID            uuid.UUID
	Gateway       string
	InvoiceID     *int64
	TxnID         string
	TxnType       string
	PaymentStatus string
	Payload       json.RawMessage
	Outcome       IPNOutcome
	Error         *string
	CreatedAt     time.Time
}
