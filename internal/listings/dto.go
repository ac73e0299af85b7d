package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// CreateListingRequest is the payload for posting a listing.
type CreateListingRequest struct {
	Type             string   `json:"type" validate:"required,oneof=space_available delivery_request"`
	Title            string   `json:"title" validate:"required,min=1,max=200"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Origin           string   `json:"origin" validate:"required,min=1,max=120"`
	Destination      string   `json:"destination" validate:"required,min=1,max=120"`
	TravelDate       string   `json:"travel_date" validate:"required"`
	PriceUSD         float64  `json:"price_usd" validate:"required,gt=0"`
	WeightKG         *float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
	AvailableSpaceKG *float64 `json:"available_space_kg,omitempty" validate:"omitempty,gt=0"`
}

// SearchListingsQuery captures the supported search filters.
type SearchListingsQuery struct {
	Origin      string `json:"origin" validate:"omitempty,max=120"`
	Destination string `json:"destination" validate:"omitempty,max=120"`
	Type        string `json:"type" validate:"omitempty,oneof=space_available delivery_request"`
	Limit       int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

// ListingResponse is the public projection of a listing.
type ListingResponse struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	Type             enums.ListingType `json:"type"`
	Title            string            `json:"title"`
	Description      *string           `json:"description,omitempty"`
	Origin           string            `json:"origin"`
	Destination      string            `json:"destination"`
	TravelDate       time.Time         `json:"travel_date"`
	PriceUSD         decimal.Decimal   `json:"price_usd"`
	WeightKG         *float64          `json:"weight_kg,omitempty"`
	AvailableSpaceKG *float64          `json:"available_space_kg,omitempty"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
}
