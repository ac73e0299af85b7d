package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Repository exposes payment, confirmation, and settlement persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error

	EnsureConfirmation(ctx context.Context, paymentID uuid.UUID) error
	FindConfirmation(ctx context.Context, paymentID uuid.UUID) (*models.DeliveryConfirmation, error)
	SetConfirmationFlag(ctx context.Context, paymentID uuid.UUID, role enums.PartyRole, at time.Time) error

	FindMatchByTriple(ctx context.Context, listingID, senderID, travelerID uuid.UUID) (*models.Match, error)
	CompleteMatch(ctx context.Context, matchID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// EnsureConfirmation creates the single confirmation row for a payment if it
// does not exist yet. Concurrent callers race on the unique payment_id index;
// the loser's insert is a no-op.
func (r *repository) EnsureConfirmation(ctx context.Context, paymentID uuid.UUID) error {
	row := &models.DeliveryConfirmation{
		ID:        uuid.New(),
		PaymentID: paymentID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *repository) FindConfirmation(ctx context.Context, paymentID uuid.UUID) (*models.DeliveryConfirmation, error) {
	var confirmation models.DeliveryConfirmation
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&confirmation).Error
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// SetConfirmationFlag flips one party's flag with a single targeted UPDATE
// keyed by payment_id. Monotonic: it never unsets, and re-running is a no-op.
func (r *repository) SetConfirmationFlag(ctx context.Context, paymentID uuid.UUID, role enums.PartyRole, at time.Time) error {
	updates := map[string]any{}
	switch role {
	case enums.PartyRoleSender:
		updates["confirmed_by_sender"] = true
		updates["sender_confirmed_at"] = at
	case enums.PartyRoleTraveler:
		updates["confirmed_by_traveler"] = true
		updates["traveler_confirmed_at"] = at
	}

	return r.db.WithContext(ctx).
		Model(&models.DeliveryConfirmation{}).
		Where("payment_id = ?", paymentID).
		Updates(updates).Error
}

func (r *repository) FindMatchByTriple(ctx context.Context, listingID, senderID, travelerID uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND sender_id = ? AND traveler_id = ?", listingID, senderID, travelerID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *repository) CompleteMatch(ctx context.Context, matchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("status", enums.MatchStatusCompleted).Error
}
