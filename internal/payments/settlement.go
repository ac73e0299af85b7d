package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
)

const (
	messageWaiting  = "Confirmation recorded"
	messageReleased = "Payment released!"
)

// ConfirmDelivery records one party's acknowledgement and, once both parties
// have confirmed, captures the held charge and completes the match.
//
// The confirmation row is created at most once per payment (unique
// payment_id upsert) and each flag is flipped with a single targeted UPDATE,
// so two near-simultaneous confirmations cannot lose each other's write. The
// capture is issued with an idempotency key derived from the payment id and
// an already-captured answer from the processor counts as success, so at most
// one capture takes effect even when both racing calls see bothConfirmed.
func (s *service) ConfirmDelivery(ctx context.Context, actorID uuid.UUID, req ConfirmDeliveryRequest) (*ConfirmDeliveryResponse, error) {
	role, err := enums.ParsePartyRole(req.UserType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_type must be sender or traveler")
	}

	ctx = s.logg.WithPaymentID(ctx, req.PaymentID.String())

	payment, err := s.repo.FindPaymentByID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}

	// The stored identities are authoritative; the claimed role only selects
	// which one the actor must match.
	authorized := (role == enums.PartyRoleSender && payment.SenderID == actorID) ||
		(role == enums.PartyRoleTraveler && payment.TravelerID == actorID)
	if !authorized {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to confirm this delivery")
	}

	if err := s.repo.EnsureConfirmation(ctx, payment.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure confirmation row")
	}

	if err := s.repo.SetConfirmationFlag(ctx, payment.ID, role, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record confirmation")
	}
	s.metrics.IncConfirmation(string(role))

	confirmation, err := s.repo.FindConfirmation(ctx, payment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read confirmation")
	}

	bothConfirmed := confirmation.BothConfirmed()
	if !bothConfirmed {
		return &ConfirmDeliveryResponse{BothConfirmed: false, Message: messageWaiting}, nil
	}

	// Without a charge reference there is nothing to capture yet; the flags
	// stand and a later confirmation call retries the capture.
	if payment.StripePaymentIntentID == "" {
		s.logg.Warn(ctx, "both parties confirmed but payment has no charge reference; capture deferred")
		return &ConfirmDeliveryResponse{BothConfirmed: true, Message: messageWaiting}, nil
	}

	if payment.Status == enums.PaymentStatusReleased {
		return &ConfirmDeliveryResponse{BothConfirmed: true, Message: messageReleased}, nil
	}

	if err := s.capture(ctx, payment.ID, payment.StripePaymentIntentID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePaymentStatus(ctx, payment.ID, enums.PaymentStatusReleased); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark payment released")
	}

	s.completeMatch(ctx, payment.ListingID, payment.SenderID, payment.TravelerID)

	s.logg.Info(ctx, "escrow released")
	return &ConfirmDeliveryResponse{BothConfirmed: true, Message: messageReleased}, nil
}

func (s *service) capture(ctx context.Context, paymentID uuid.UUID, intentID string) error {
	idempotencyKey := fmt.Sprintf("payment-capture-%s", paymentID)
	err := s.processor.CapturePaymentIntent(ctx, intentID, idempotencyKey)
	switch {
	case err == nil:
		s.metrics.IncCapture()
		return nil
	case errors.Is(err, ErrAlreadyCaptured):
		s.logg.Info(ctx, "charge already captured; treating as settled")
		s.metrics.IncCapture()
		return nil
	default:
		s.metrics.IncCaptureFailure()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "capture payment")
	}
}

// completeMatch moves the settled payment's match to completed. A missing
// match is a data-consistency anomaly: logged, never rolled back, because
// the funds have already moved.
func (s *service) completeMatch(ctx context.Context, listingID, senderID, travelerID uuid.UUID) {
	match, err := s.repo.FindMatchByTriple(ctx, listingID, senderID, travelerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, "released payment has no matching match row")
			return
		}
		s.logg.Error(ctx, "match lookup failed after release", err)
		return
	}

	if err := s.repo.CompleteMatch(ctx, match.ID); err != nil {
		s.logg.Error(ctx, "failed to complete match after release", err)
	}
}
