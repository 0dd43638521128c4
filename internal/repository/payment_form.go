package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

const paymentFormColumns = `id, name, elements, created_at`

type PaymentFormRepository struct {
	db *sql.DB
}

func NewPaymentFormRepository(db *sql.DB) *PaymentFormRepository {
	return &PaymentFormRepository{db: db}
}

func (r *PaymentFormRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentForm, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentFormColumns+` FROM payment_forms WHERE id = $1`, id,
	)

	var f domain.PaymentForm
	var elements []byte
	if err := row.Scan(&f.ID, &f.Name, &elements, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrFormNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	if err := json.Unmarshal(elements, &f.Elements); err != nil {
		return nil, fmt.Errorf("GetByID: decode elements: %w", err)
	}
	return &f, nil
}
