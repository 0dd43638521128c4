package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

const ipnEventColumns = `id, gateway, invoice_id, txn_id, txn_type, payment_status,
	payload, outcome, error, created_at`

type IPNEventRepository struct {
	db *sql.DB
}

func NewIPNEventRepository(db *sql.DB) *IPNEventRepository {
	return &IPNEventRepository{db: db}
}

func (r *IPNEventRepository) Create(ctx context.Context, event *domain.IPNEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ipn_events (`+ipnEventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Gateway, event.InvoiceID, event.TxnID, event.TxnType, event.PaymentStatus,
		string(event.Payload), event.Outcome, event.Error, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByInvoiceID returns the most recent notifications for an invoice, newest first.
func (r *IPNEventRepository) ListByInvoiceID(ctx context.Context, invoiceID int64, limit int) ([]domain.IPNEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ipnEventColumns+` FROM ipn_events
		WHERE invoice_id = $1 ORDER BY created_at DESC LIMIT $2`,
		invoiceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByInvoiceID: %w", err)
	}
	defer rows.Close()

	var events []domain.IPNEvent
	for rows.Next() {
		e, err := scanIPNEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByInvoiceID: scan: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByInvoiceID: rows: %w", err)
	}
	return events, nil
}

func scanIPNEvent(s scanner) (*domain.IPNEvent, error) {
	var e domain.IPNEvent
	var invoiceID sql.NullInt64
	var errText sql.NullString
	var payload []byte

	err := s.Scan(
		&e.ID, &e.Gateway, &invoiceID, &e.TxnID, &e.TxnType, &e.PaymentStatus,
		&payload, &e.Outcome, &errText, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Payload = payload
	if invoiceID.Valid {
		id := invoiceID.Int64
		e.InvoiceID = &id
	}
	if errText.Valid {
		msg := errText.String
		e.Error = &msg
	}
	return &e, nil
}
