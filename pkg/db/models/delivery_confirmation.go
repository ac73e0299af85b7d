package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryConfirmation records each party's delivery acknowledgement for one
// payment. One row per payment; flags are monotonic false -> true.
type DeliveryConfirmation struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID           uuid.UUID  `gorm:"column:payment_id;type:uuid;not null;uniqueIndex:idx_delivery_confirmations_payment_id"`
	ConfirmedBySender   bool       `gorm:"column:confirmed_by_sender;not null;default:false"`
	ConfirmedByTraveler bool       `gorm:"column:confirmed_by_traveler;not null;default:false"`
	SenderConfirmedAt   *time.Time `gorm:"column:sender_confirmed_at"`
	TravelerConfirmedAt *time.Time `gorm:"column:traveler_confirmed_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BothConfirmed reports whether sender and traveler have both acknowledged.
func (d DeliveryConfirmation) BothConfirmed() bool {
	return d.ConfirmedBySender && d.ConfirmedByTraveler
}
