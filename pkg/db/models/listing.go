package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Listing is a posted offer of luggage space or a delivery request.
// Fulfilled or withdrawn listings are deactivated, never hard-deleted.
type Listing struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Type             enums.ListingType `gorm:"column:type;type:listing_type;not null"`
	Title            string            `gorm:"column:title;not null"`
	Description      *string           `gorm:"column:description"`
	Origin           string            `gorm:"column:origin;not null"`
	Destination      string            `gorm:"column:destination;not null"`
	TravelDate       time.Time         `gorm:"column:travel_date;not null"`
	PriceUSD         decimal.Decimal   `gorm:"column:price_usd;type:numeric(10,2);not null"`
	WeightKG         *float64          `gorm:"column:weight_kg;type:numeric(6,2)"`
	AvailableSpaceKG *float64          `gorm:"column:available_space_kg;type:numeric(6,2)"`
	IsActive         bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
