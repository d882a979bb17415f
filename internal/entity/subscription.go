package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Live reports whether the subscription still counts towards loyalty rankings.
func (s SubscriptionStatus) Live() bool {
	return s == SubscriptionActive || s == SubscriptionPaused
}

// SubscriptionRecord is a subscription joined with its tier and subscriber profile.
type SubscriptionRecord struct {
	ID               string             `db:"id"`
	CreatorID        string             `db:"creator_id"`
	SubscriberID     string             `db:"subscriber_id"`
	Status           SubscriptionStatus `db:"status"`
	StartedAt        time.Time          `db:"started_at"`
	NextBillingAt    sql.NullTime       `db:"next_billing_at"`
	TierName         sql.NullString     `db:"tier_name"`
	TierPrice        decimal.Decimal    `db:"tier_price"`
	SubscriberName   sql.NullString     `db:"subscriber_name"`
	SubscriberAvatar sql.NullString     `db:"subscriber_avatar"`
}

type SubscriptionCounts struct {
	Active int             `db:"active_count"`
	Paused int             `db:"paused_count"`
	MRR    decimal.Decimal `db:"mrr"`
}
