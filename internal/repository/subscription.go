package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/invoicing/internal/domain"
)

const subscriptionColumns = `id, invoice_id, profile_id, status, period, frequency,
	bill_times, recurring_amount, created_at, expiration, updated_at`

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetByInvoiceID finds the subscription started by the given parent invoice.
func (r *SubscriptionRepository) GetByInvoiceID(ctx context.Context, invoiceID int64) (*domain.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE invoice_id = $1`, invoiceID,
	)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByInvoiceID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByInvoiceID: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) Save(ctx context.Context, s *domain.Subscription) error {
	if err := updateSubscription(ctx, r.db, s); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func updateSubscription(ctx context.Context, db execer, s *domain.Subscription) error {
	res, err := db.ExecContext(ctx,
		`UPDATE subscriptions SET profile_id = $1, status = $2, created_at = $3,
			expiration = $4, updated_at = now()
		WHERE id = $5`,
		s.ProfileID, s.Status, s.CreatedAt, nullTime(s.Expiration), s.ID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subscription: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update subscription %d: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func scanSubscription(s scanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var expiration sql.NullTime

	err := s.Scan(
		&sub.ID, &sub.InvoiceID, &sub.ProfileID, &sub.Status, &sub.Period, &sub.Frequency,
		&sub.BillTimes, &sub.RecurringAmount, &sub.CreatedAt, &expiration, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiration.Valid {
		sub.Expiration = expiration.Time
	}
	return &sub, nil
}
