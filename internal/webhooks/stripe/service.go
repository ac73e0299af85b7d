package stripewebhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
)

// ServiceParams bundles the webhook service dependencies.
type ServiceParams struct {
	Payments PaymentMarker
	Logger   *logger.Logger
}

// PaymentMarker is the slice of payment persistence the webhook needs.
type PaymentMarker interface {
	FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	MarkHeld(ctx context.Context, payment *models.Payment) error
}

// Service moves payments from pending to held when Stripe reports the
// authorization as capturable.
type Service struct {
	payments PaymentMarker
	logg     *logger.Logger
}

// NewService constructs the webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, errors.New("payment marker is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{payments: params.Payments, logg: params.Logger}, nil
}

// HandleEvent reacts to checkout completion. Unhandled event types are
// acknowledged without action so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentAmountCapturableUpdated:
		intentID := event.GetObjectValue("id")
		return s.markHeld(ctx, intentID)
	case stripe.EventTypeCheckoutSessionCompleted:
		intentID := event.GetObjectValue("payment_intent")
		return s.markHeld(ctx, intentID)
	default:
		return nil
	}
}

func (s *Service) markHeld(ctx context.Context, intentID string) error {
	if intentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing from event")
	}

	payment, err := s.payments.FindPaymentByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Checkout events can outrun the payment persist; Stripe will
			// redeliver after the retry backoff.
			return pkgerrors.New(pkgerrors.CodeNotFound, "no payment for intent")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment by intent")
	}

	ctx = s.logg.WithPaymentID(ctx, payment.ID.String())

	if payment.Status != enums.PaymentStatusPending {
		// held/released/refunded: the transition already happened.
		return nil
	}

	if err := s.payments.MarkHeld(ctx, payment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark payment held")
	}

	s.logg.Info(ctx, fmt.Sprintf("payment held for intent %s", intentID))
	return nil
}
