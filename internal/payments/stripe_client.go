package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgstripe "github.com/carryconnect/carryconnect-backend/pkg/stripe"
)

// ErrAlreadyCaptured signals the processor reported the charge as captured
// before this call. Settlement treats it as success.
var ErrAlreadyCaptured = errors.New("payment intent already captured")

// IntentInput configures a manual-capture authorization.
type IntentInput struct {
	AmountCents int64
	Currency    string
	CustomerID  string
	Metadata    map[string]string
}

// CheckoutInput configures a hosted checkout session bound to a
// manual-capture intent.
type CheckoutInput struct {
	CustomerID    string
	CustomerEmail string
	ProductName   string
	Description   string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Processor is the payment-processor surface the payments service depends on.
type Processor interface {
	// FindCustomerByEmail returns the existing customer id for the email, or
	// "" when none exists.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreatePaymentIntent(ctx context.Context, in IntentInput) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
	// CapturePaymentIntent settles a previously authorized charge. Repeated
	// captures of the same reference return ErrAlreadyCaptured.
	CapturePaymentIntent(ctx context.Context, intentID, idempotencyKey string) error
}

type stripeProcessor struct{}

// NewProcessor wraps the initialized Stripe client so the payments service
// can be tested against a stub.
func NewProcessor(api *pkgstripe.Client) Processor {
	if api == nil {
		return nil
	}
	return &stripeProcessor{}
}

func (p *stripeProcessor) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func (p *stripeProcessor) CreatePaymentIntent(ctx context.Context, in IntentInput) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.AmountCents),
		Currency:      stripe.String(in.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return intent.ID, nil
}

func (p *stripeProcessor) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
			Metadata:      in.Metadata,
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.ProductName),
						Description: stripe.String(in.Description),
					},
					UnitAmount: stripe.Int64(in.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	// Stripe rejects requests carrying both a customer id and a raw email.
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	} else if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (p *stripeProcessor) CapturePaymentIntent(ctx context.Context, intentID, idempotencyKey string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}

	_, err := paymentintent.Capture(intentID, params)
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
		// The intent is not capturable because an earlier call captured it.
		return ErrAlreadyCaptured
	}
	return err
}
