package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Match pairs a sender and a traveler for one listing.
// Invariant: SenderID != TravelerID.
type Match struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID   uuid.UUID         `gorm:"column:listing_id;type:uuid;not null;index"`
	SenderID    uuid.UUID         `gorm:"column:sender_id;type:uuid;not null;index"`
	TravelerID  uuid.UUID         `gorm:"column:traveler_id;type:uuid;not null;index"`
	Status      enums.MatchStatus `gorm:"column:status;type:match_status;not null;default:'pending'"`
	PriceAgreed decimal.Decimal   `gorm:"column:price_agreed;type:numeric(10,2);not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
