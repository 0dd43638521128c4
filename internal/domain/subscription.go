package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusFailing   SubscriptionStatus = "failing"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

type BillingPeriod string

const (
	BillingPeriodDay   BillingPeriod = "day"
	BillingPeriodWeek  BillingPeriod = "week"
	BillingPeriodMonth BillingPeriod = "month"
	BillingPeriodYear  BillingPeriod = "year"
)

// Add moves t forward by n periods. Unknown periods leave t unchanged.
func (p BillingPeriod) Add(t time.Time, n int) time.Time {
	switch p {
	case BillingPeriodDay:
		return t.AddDate(0, 0, n)
	case BillingPeriodWeek:
		return t.AddDate(0, 0, 7*n)
	case BillingPeriodMonth:
		return t.AddDate(0, n, 0)
	case BillingPeriodYear:
		return t.AddDate(n, 0, 0)
	default:
		return t
	}
}

type Subscription struct {
	ID              int64
	InvoiceID       int64
	ProfileID       string
	Status          SubscriptionStatus
	Period          BillingPeriod
	Frequency       int
	BillTimes       int
	RecurringAmount decimal.Decimal
	CreatedAt       time.Time
	Expiration      time.Time
	UpdatedAt       time.Time
}

// Duration is the span between creation and expiration, or zero when either
// is unset.
func (s *Subscription) Duration() time.Duration {
	if s.CreatedAt.IsZero() || s.Expiration.IsZero() {
		return 0
	}
	return s.Expiration.Sub(s.CreatedAt)
}

// Restart re-anchors the subscription at now while keeping its length.
func (s *Subscription) Restart(now time.Time) {
	d := s.Duration()
	hadExpiration := !s.Expiration.IsZero()
	s.CreatedAt = now
	if hadExpiration {
		s.Expiration = now.Add(d)
	}
}

func (s *Subscription) Activate() {
	s.Status = SubscriptionStatusActive
}

// Renew extends the expiration by one billing interval counted from the later
// of the current expiration and now. paymentsMade includes the payment being
// renewed for; once it reaches BillTimes the subscription completes instead.
func (s *Subscription) Renew(paymentsMade int, now time.Time) {
	if s.BillTimes > 0 && paymentsMade >= s.BillTimes {
		s.Complete()
		return
	}

	from := s.Expiration
	if from.Before(now) {
		from = now
	}
	frequency := s.Frequency
	if frequency < 1 {
		frequency = 1
	}
	s.Expiration = s.Period.Add(from, frequency)
	s.Status = SubscriptionStatusActive
}

func (s *Subscription) Cancel() {
	s.Status = SubscriptionStatusCancelled
}

// Complete ends the subscription. Cancelled subscriptions stay cancelled.
func (s *Subscription) Complete() {
	if s.Status == SubscriptionStatusCancelled {
		return
	}
	s.Status = SubscriptionStatusCompleted
}

func (s *Subscription) Fail() {
	s.Status = SubscriptionStatusFailing
}
