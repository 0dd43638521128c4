package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

const invoiceColumns = `id, number, parent_id, gateway, mode, currency, total, status,
	transaction_id, refunded_remotely, fees, completed_at, created_at, updated_at`

const invoiceNoteColumns = `id, invoice_id, content, customer_note, added_by, created_at`

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	notes, err := r.listNotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	inv.Notes = notes
	return inv, nil
}

// GetIDByTransactionID returns the invoice already holding txnID.
func (r *InvoiceRepository) GetIDByTransactionID(ctx context.Context, txnID string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM invoices WHERE transaction_id = $1 ORDER BY id LIMIT 1`, txnID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("GetIDByTransactionID: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("GetIDByTransactionID: %w", err)
	}
	return id, nil
}

func (r *InvoiceRepository) CountRenewals(ctx context.Context, parentID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE parent_id = $1`, parentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountRenewals: %w", err)
	}
	return n, nil
}

// Create inserts inv along with its notes and fills in the generated id.
// A second renewal carrying the same transaction id fails with
// domain.ErrDuplicateTransaction.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertInvoice(ctx, tx, inv); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

// CreateRenewal inserts a renewal invoice and writes the renewed
// subscription in one transaction, so a failed subscription write leaves
// no renewal behind for the duplicate transaction check to find.
func (r *InvoiceRepository) CreateRenewal(ctx context.Context, renewal *domain.Invoice, sub *domain.Subscription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateRenewal: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertInvoice(ctx, tx, renewal); err != nil {
		return fmt.Errorf("CreateRenewal: %w", err)
	}
	if err := updateSubscription(ctx, tx, sub); err != nil {
		return fmt.Errorf("CreateRenewal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateRenewal: commit: %w", err)
	}
	return nil
}

func insertInvoice(ctx context.Context, tx *sql.Tx, inv *domain.Invoice) error {
	fees, err := json.Marshal(feesOrEmpty(inv.Fees))
	if err != nil {
		return fmt.Errorf("marshal fees: %w", err)
	}

	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	err = tx.QueryRowContext(ctx,
		`INSERT INTO invoices (
			number, parent_id, gateway, mode, currency, total, status,
			transaction_id, refunded_remotely, fees, completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		inv.Number, nullInt64(inv.ParentID), inv.Gateway, inv.Mode, inv.Currency, inv.Total, inv.Status,
		inv.TransactionID, inv.RefundedRemotely, string(fees), inv.CompletedAt, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range inv.Notes {
		inv.Notes[i].InvoiceID = inv.ID
	}
	return insertNotes(ctx, tx, inv.PendingNotes())
}

// Save writes the mutable invoice fields and appends any unsaved notes.
func (r *InvoiceRepository) Save(ctx context.Context, inv *domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = $1, transaction_id = $2, refunded_remotely = $3,
			completed_at = $4, updated_at = now()
		WHERE id = $5`,
		inv.Status, inv.TransactionID, inv.RefundedRemotely, inv.CompletedAt, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Save: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Save: %w", domain.ErrNotFound)
	}

	if err := insertNotes(ctx, tx, inv.PendingNotes()); err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Save: commit: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) listNotes(ctx context.Context, invoiceID int64) ([]domain.InvoiceNote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceNoteColumns+` FROM invoice_notes
		WHERE invoice_id = $1 ORDER BY created_at, id`, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("listNotes: %w", err)
	}
	defer rows.Close()

	var notes []domain.InvoiceNote
	for rows.Next() {
		var n domain.InvoiceNote
		if err := rows.Scan(&n.ID, &n.InvoiceID, &n.Content, &n.CustomerNote, &n.AddedBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("listNotes: scan: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listNotes: rows: %w", err)
	}
	return notes, nil
}

func insertNotes(ctx context.Context, tx *sql.Tx, notes []*domain.InvoiceNote) error {
	for _, n := range notes {
		id := uuid.New()
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_notes (`+invoiceNoteColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, n.InvoiceID, n.Content, n.CustomerNote, n.AddedBy, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insertNotes: %w", err)
		}
		n.ID = id
	}
	return nil
}

func scanInvoice(s scanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var parentID sql.NullInt64
	var fees []byte

	err := s.Scan(
		&inv.ID, &inv.Number, &parentID, &inv.Gateway, &inv.Mode, &inv.Currency, &inv.Total, &inv.Status,
		&inv.TransactionID, &inv.RefundedRemotely, &fees, &inv.CompletedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		inv.ParentID = parentID.Int64
	}
	if len(fees) > 0 {
		if err := json.Unmarshal(fees, &inv.Fees); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
	}
	return &inv, nil
}

func feesOrEmpty(fees []domain.Fee) []domain.Fee {
	if fees == nil {
		return []domain.Fee{}
	}
	return fees
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
