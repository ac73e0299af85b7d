package matches

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// CreateMatchRequest pairs the requester with a counterparty for one listing.
type CreateMatchRequest struct {
	ListingID   uuid.UUID `json:"listing_id" validate:"required"`
	TravelerID  uuid.UUID `json:"traveler_id" validate:"required"`
	PriceAgreed float64   `json:"price_agreed" validate:"required,gt=0"`
}

// MatchResponse is the public projection of a match.
type MatchResponse struct {
	ID          uuid.UUID         `json:"id"`
	ListingID   uuid.UUID         `json:"listing_id"`
	SenderID    uuid.UUID         `json:"sender_id"`
	TravelerID  uuid.UUID         `json:"traveler_id"`
	Status      enums.MatchStatus `json:"status"`
	PriceAgreed decimal.Decimal   `json:"price_agreed"`
	CreatedAt   time.Time         `json:"created_at"`
}
