package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_Restart(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	sub := &Subscription{CreatedAt: created, Expiration: created.AddDate(0, 1, 0)}
	sub.Restart(now)

	assert.Equal(t, now, sub.CreatedAt)
	assert.Equal(t, now.Add(31*24*time.Hour), sub.Expiration)
}

func TestSubscription_Restart_NoExpiration(t *testing.T) {
	now := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	sub := &Subscription{CreatedAt: now.Add(-time.Hour)}
	sub.Restart(now)

	assert.Equal(t, now, sub.CreatedAt)
	assert.True(t, sub.Expiration.IsZero())
}

func TestSubscription_Renew(t *testing.T) {
	now := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		sub            Subscription
		payments       int
		wantStatus     SubscriptionStatus
		wantExpiration time.Time
	}{
		{
			name: "extends from future expiration",
			sub: Subscription{
				Status: SubscriptionStatusActive, Period: BillingPeriodMonth, Frequency: 1,
				Expiration: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
			},
			payments:       2,
			wantStatus:     SubscriptionStatusActive,
			wantExpiration: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "extends from now when lapsed",
			sub: Subscription{
				Status: SubscriptionStatusFailing, Period: BillingPeriodWeek, Frequency: 2,
				Expiration: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			},
			payments:       3,
			wantStatus:     SubscriptionStatusActive,
			wantExpiration: now.AddDate(0, 0, 14),
		},
		{
			name: "zero frequency counts as one",
			sub: Subscription{
				Status: SubscriptionStatusActive, Period: BillingPeriodYear,
				Expiration: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			},
			payments:       2,
			wantStatus:     SubscriptionStatusActive,
			wantExpiration: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last bill completes",
			sub: Subscription{
				Status: SubscriptionStatusActive, Period: BillingPeriodMonth, Frequency: 1, BillTimes: 3,
				Expiration: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
			},
			payments:       3,
			wantStatus:     SubscriptionStatusCompleted,
			wantExpiration: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := tc.sub
			sub.Renew(tc.payments, now)
			assert.Equal(t, tc.wantStatus, sub.Status)
			assert.Equal(t, tc.wantExpiration, sub.Expiration)
		})
	}
}

func TestSubscription_Transitions(t *testing.T) {
	sub := &Subscription{Status: SubscriptionStatusPending}

	sub.Activate()
	assert.Equal(t, SubscriptionStatusActive, sub.Status)

	sub.Fail()
	assert.Equal(t, SubscriptionStatusFailing, sub.Status)

	sub.Complete()
	assert.Equal(t, SubscriptionStatusCompleted, sub.Status)

	sub.Cancel()
	assert.Equal(t, SubscriptionStatusCancelled, sub.Status)

	sub.Complete()
	assert.Equal(t, SubscriptionStatusCancelled, sub.Status, "cancelled subscriptions do not complete")
}
