package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Payment is one escrow transaction for a (listing, sender, traveler) triple.
// The fee split is fixed at creation time and never recomputed; status
// transitions are owned by the settlement machine.
type Payment struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID             uuid.UUID           `gorm:"column:listing_id;type:uuid;not null;index"`
	SenderID              uuid.UUID           `gorm:"column:sender_id;type:uuid;not null;index"`
	TravelerID            uuid.UUID           `gorm:"column:traveler_id;type:uuid;not null;index"`
	AmountUSD             decimal.Decimal     `gorm:"column:amount_usd;type:numeric(10,2);not null"`
	PlatformFeeUSD        decimal.Decimal     `gorm:"column:platform_fee_usd;type:numeric(10,2);not null"`
	TravelerAmountUSD     decimal.Decimal     `gorm:"column:traveler_amount_usd;type:numeric(10,2);not null"`
	StripePaymentIntentID string              `gorm:"column:stripe_payment_intent_id"`
	Status                enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
