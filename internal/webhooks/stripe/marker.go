package stripewebhook

import (
	"context"

	"github.com/carryconnect/carryconnect-backend/internal/payments"
	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

type markerAdapter struct {
	repo payments.Repository
}

// NewPaymentMarker adapts the payments repository for the webhook service.
func NewPaymentMarker(repo payments.Repository) PaymentMarker {
	if repo == nil {
		return nil
	}
	return &markerAdapter{repo: repo}
}

func (a *markerAdapter) FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	return a.repo.FindPaymentByIntentID(ctx, intentID)
}

func (a *markerAdapter) MarkHeld(ctx context.Context, payment *models.Payment) error {
	return a.repo.UpdatePaymentStatus(ctx, payment.ID, enums.PaymentStatusHeld)
}
