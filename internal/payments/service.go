package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
	"github.com/carryconnect/carryconnect-backend/pkg/metrics"
)

type listingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type matchFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
}

// Service issues escrow payment intents and runs delivery settlement.
type Service interface {
	CreateIntent(ctx context.Context, requesterEmail string, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	ConfirmDelivery(ctx context.Context, actorID uuid.UUID, req ConfirmDeliveryRequest) (*ConfirmDeliveryResponse, error)
}

type service struct {
	repo      Repository
	listings  listingFinder
	matches   matchFinder
	processor Processor
	checkout  config.CheckoutConfig
	feeRate   decimal.Decimal
	minCharge decimal.Decimal
	logg      *logger.Logger
	metrics   *metrics.SettlementMetrics
}

// ServiceParams bundles the payments service dependencies.
type ServiceParams struct {
	Repo      Repository
	Listings  listingFinder
	Matches   matchFinder
	Processor Processor
	Checkout  config.CheckoutConfig
	Fees      config.FeeConfig
	Logger    *logger.Logger
	Metrics   *metrics.SettlementMetrics
}

// NewService constructs the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	if params.Matches == nil {
		return nil, fmt.Errorf("matches repository is required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("payment processor is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	feeRate, err := decimal.NewFromString(params.Fees.PlatformFeeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid platform fee rate %q: %w", params.Fees.PlatformFeeRate, err)
	}
	if feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("platform fee rate %s out of range [0, 1)", feeRate)
	}

	return &service{
		repo:      params.Repo,
		listings:  params.Listings,
		matches:   params.Matches,
		processor: params.Processor,
		checkout:  params.Checkout,
		feeRate:   feeRate,
		minCharge: decimal.NewFromInt(int64(params.Fees.MinimumChargeUSD)),
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// feeSplit computes the authoritative escrow split for a listing price.
// Computed once at intent creation and persisted; never recomputed.
func (s *service) feeSplit(price decimal.Decimal) (amount, platformFee, travelerAmount decimal.Decimal) {
	amount = price
	if amount.LessThan(s.minCharge) {
		amount = s.minCharge
	}
	platformFee = amount.Mul(s.feeRate).Round(2)
	travelerAmount = amount.Sub(platformFee)
	return amount, platformFee, travelerAmount
}

func (s *service) CreateIntent(ctx context.Context, requesterEmail string, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"listing_id": req.ListingID.String(),
		"match_id":   req.MatchID.String(),
	})

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}

	match, err := s.matches.FindByID(ctx, req.MatchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "match not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find match")
	}
	if match.ListingID != listing.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "match not found for listing")
	}

	amount, platformFee, travelerAmount := s.feeSplit(listing.PriceUSD)
	amountCents := amount.Shift(2).IntPart()

	customerID, err := s.processor.FindCustomerByEmail(ctx, requesterEmail)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up processor customer")
	}

	intentMetadata := map[string]string{
		"listingId":      listing.ID.String(),
		"matchId":        match.ID.String(),
		"senderId":       match.SenderID.String(),
		"travelerId":     match.TravelerID.String(),
		"platformFee":    platformFee.String(),
		"travelerAmount": travelerAmount.String(),
	}
	intentID, err := s.processor.CreatePaymentIntent(ctx, IntentInput{
		AmountCents: amountCents,
		Currency:    "usd",
		CustomerID:  customerID,
		Metadata:    intentMetadata,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	checkoutURL, err := s.processor.CreateCheckoutSession(ctx, CheckoutInput{
		CustomerID:    customerID,
		CustomerEmail: requesterEmail,
		ProductName:   fmt.Sprintf("Delivery: %s", listing.Title),
		Description:   fmt.Sprintf("%s → %s", listing.Origin, listing.Destination),
		AmountCents:   amountCents,
		Currency:      "usd",
		SuccessURL:    s.checkout.SuccessURL,
		CancelURL:     s.checkout.CancelURL,
		Metadata: map[string]string{
			"listingId":  listing.ID.String(),
			"matchId":    match.ID.String(),
			"senderId":   match.SenderID.String(),
			"travelerId": match.TravelerID.String(),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	payment := &models.Payment{
		ID:                    uuid.New(),
		ListingID:             listing.ID,
		SenderID:              match.SenderID,
		TravelerID:            match.TravelerID,
		AmountUSD:             amount,
		PlatformFeeUSD:        platformFee,
		TravelerAmountUSD:     travelerAmount,
		StripePaymentIntentID: intentID,
		Status:                enums.PaymentStatusPending,
	}
	if _, err := s.repo.CreatePayment(ctx, payment); err != nil {
		// The authorization already exists at the processor with no local
		// record. Reconciliation is operational; see the runbook note on
		// orphaned authorizations.
		s.logg.Error(ctx, fmt.Sprintf("payment persist failed after authorization %s; orphaned authorization requires reconciliation", intentID), err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment")
	}

	s.metrics.IncIntentCreated()
	s.logg.Info(s.logg.WithPaymentID(ctx, payment.ID.String()), "escrow checkout created")

	return &CreatePaymentResponse{URL: checkoutURL}, nil
}
