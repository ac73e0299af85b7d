package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// CreatePaymentRequest opens an escrow checkout for a matched listing.
type CreatePaymentRequest struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
	MatchID   uuid.UUID `json:"match_id" validate:"required"`
}

// CreatePaymentResponse returns the hosted checkout redirect target.
type CreatePaymentResponse struct {
	URL string `json:"url"`
}

// ConfirmDeliveryRequest records one party's delivery acknowledgement.
type ConfirmDeliveryRequest struct {
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
	UserType  string    `json:"user_type" validate:"required,oneof=sender traveler"`
}

// ConfirmDeliveryResponse tells the caller whether settlement completed.
type ConfirmDeliveryResponse struct {
	BothConfirmed bool   `json:"both_confirmed"`
	Message       string `json:"message"`
}

// PaymentResponse is the public projection of a payment.
type PaymentResponse struct {
	ID                uuid.UUID           `json:"id"`
	ListingID         uuid.UUID           `json:"listing_id"`
	SenderID          uuid.UUID           `json:"sender_id"`
	TravelerID        uuid.UUID           `json:"traveler_id"`
	AmountUSD         decimal.Decimal     `json:"amount_usd"`
	PlatformFeeUSD    decimal.Decimal     `json:"platform_fee_usd"`
	TravelerAmountUSD decimal.Decimal     `json:"traveler_amount_usd"`
	Status            enums.PaymentStatus `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
}
