package payments

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:payments_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection serializes concurrent test traffic; sqlite's
	// shared-cache mode otherwise throws table-lock errors under contention.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  travel_date DATETIME NOT NULL,
  price_usd TEXT NOT NULL,
  weight_kg REAL,
  available_space_kg REAL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS matches (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  traveler_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  price_agreed TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  traveler_id TEXT NOT NULL,
  amount_usd TEXT NOT NULL,
  platform_fee_usd TEXT NOT NULL,
  traveler_amount_usd TEXT NOT NULL,
  stripe_payment_intent_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS delivery_confirmations (
  id TEXT PRIMARY KEY,
  payment_id TEXT NOT NULL,
  confirmed_by_sender INTEGER NOT NULL DEFAULT 0,
  confirmed_by_traveler INTEGER NOT NULL DEFAULT 0,
  sender_confirmed_at DATETIME,
  traveler_confirmed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_delivery_confirmations_payment_id ON delivery_confirmations (payment_id);`,
	}
	for _, schema := range schemas {
		require.NoError(t, conn.Exec(schema).Error)
	}
	for _, table := range []string{"listings", "matches", "payments", "delivery_confirmations"} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}
	return conn
}

// stubProcessor records calls and plays back configured answers.
type stubProcessor struct {
	mu sync.Mutex

	customerID   string
	customerErr  error
	intentID     string
	intentErr    error
	checkoutURL  string
	checkoutErr  error
	captureErr   error
	captureCalls int

	intentInputs   []IntentInput
	checkoutInputs []CheckoutInput
	captureKeys    []string
}

func (s *stubProcessor) FindCustomerByEmail(context.Context, string) (string, error) {
	return s.customerID, s.customerErr
}

func (s *stubProcessor) CreatePaymentIntent(_ context.Context, in IntentInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intentInputs = append(s.intentInputs, in)
	if s.intentErr != nil {
		return "", s.intentErr
	}
	if s.intentID == "" {
		return "pi_test", nil
	}
	return s.intentID, nil
}

func (s *stubProcessor) CreateCheckoutSession(_ context.Context, in CheckoutInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutInputs = append(s.checkoutInputs, in)
	if s.checkoutErr != nil {
		return "", s.checkoutErr
	}
	if s.checkoutURL == "" {
		return "https://checkout.stripe.test/session", nil
	}
	return s.checkoutURL, nil
}

func (s *stubProcessor) CapturePaymentIntent(_ context.Context, _, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureCalls++
	s.captureKeys = append(s.captureKeys, key)
	return s.captureErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "payments-test", Output: io.Discard})
}

type paymentsFixture struct {
	conn      *gorm.DB
	repo      Repository
	processor *stubProcessor
	svc       Service
}

func newPaymentsFixture(t *testing.T) *paymentsFixture {
	t.Helper()

	conn := setupPaymentsTestDB(t)
	repo := NewRepository(conn)
	processor := &stubProcessor{}

	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Listings:  listingFinderFunc(conn),
		Matches:   matchFinderFunc(conn),
		Processor: processor,
		Checkout: config.CheckoutConfig{
			SuccessURL: "https://app.test/dashboard?payment=success",
			CancelURL:  "https://app.test/dashboard?payment=cancelled",
		},
		Fees:   config.FeeConfig{PlatformFeeRate: "0.12", MinimumChargeUSD: 5},
		Logger: testLogger(),
	})
	require.NoError(t, err)

	return &paymentsFixture{conn: conn, repo: repo, processor: processor, svc: svc}
}

type gormListingFinder struct{ db *gorm.DB }

func listingFinderFunc(db *gorm.DB) listingFinder { return &gormListingFinder{db: db} }

func (f *gormListingFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := f.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

type gormMatchFinder struct{ db *gorm.DB }

func matchFinderFunc(db *gorm.DB) matchFinder { return &gormMatchFinder{db: db} }

func (f *gormMatchFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	if err := f.db.WithContext(ctx).Where("id = ?", id).First(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

func (fx *paymentsFixture) seedListingAndMatch(t *testing.T, price float64) (*models.Listing, *models.Match) {
	t.Helper()

	listing := &models.Listing{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        enums.ListingTypeSpaceAvailable,
		Title:       "Extra suitcase space",
		Origin:      "New York, USA",
		Destination: "London, UK",
		TravelDate:  time.Now().Add(96 * time.Hour),
		PriceUSD:    decimal.NewFromFloat(price),
		IsActive:    true,
	}
	require.NoError(t, fx.conn.Create(listing).Error)

	match := &models.Match{
		ID:          uuid.New(),
		ListingID:   listing.ID,
		SenderID:    uuid.New(),
		TravelerID:  uuid.New(),
		Status:      enums.MatchStatusAccepted,
		PriceAgreed: listing.PriceUSD,
	}
	require.NoError(t, fx.conn.Create(match).Error)
	return listing, match
}

func TestCreateIntentTwentyDollarSplit(t *testing.T) {
	fx := newPaymentsFixture(t)
	ctx := context.Background()
	listing, match := fx.seedListingAndMatch(t, 20)

	resp, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: listing.ID,
		MatchID:   match.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/session", resp.URL)

	var payment models.Payment
	require.NoError(t, fx.conn.Where("listing_id = ?", listing.ID).First(&payment).Error)
	assert.Equal(t, "20", payment.AmountUSD.String())
	assert.Equal(t, "2.4", payment.PlatformFeeUSD.String())
	assert.Equal(t, "17.6", payment.TravelerAmountUSD.String())
	assert.Equal(t, "pi_test", payment.StripePaymentIntentID)
	assert.Equal(t, enums.PaymentStatusPending, payment.Status)

	// fee + traveler share always reassemble the amount exactly.
	assert.True(t, payment.PlatformFeeUSD.Add(payment.TravelerAmountUSD).Equal(payment.AmountUSD))

	require.Len(t, fx.processor.intentInputs, 1)
	in := fx.processor.intentInputs[0]
	assert.Equal(t, int64(2000), in.AmountCents)
	assert.Equal(t, match.SenderID.String(), in.Metadata["senderId"])
	assert.Equal(t, "2.4", in.Metadata["platformFee"])

	require.Len(t, fx.processor.checkoutInputs, 1)
	co := fx.processor.checkoutInputs[0]
	assert.Equal(t, "Delivery: Extra suitcase space", co.ProductName)
	assert.Equal(t, "New York, USA → London, UK", co.Description)
	assert.Equal(t, "https://app.test/dashboard?payment=success", co.SuccessURL)
}

func TestCreateIntentMinimumCharge(t *testing.T) {
	fx := newPaymentsFixture(t)
	ctx := context.Background()
	listing, match := fx.seedListingAndMatch(t, 3)

	_, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: listing.ID,
		MatchID:   match.ID,
	})
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, fx.conn.Where("listing_id = ?", listing.ID).First(&payment).Error)
	assert.Equal(t, "5", payment.AmountUSD.String())
	assert.Equal(t, "0.6", payment.PlatformFeeUSD.String())
	assert.Equal(t, "4.4", payment.TravelerAmountUSD.String())
}

func TestCreateIntentMissingListing(t *testing.T) {
	fx := newPaymentsFixture(t)
	ctx := context.Background()

	_, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: uuid.New(),
		MatchID:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Empty(t, fx.processor.intentInputs)
}

func TestCreateIntentMatchMustReferenceListing(t *testing.T) {
	fx := newPaymentsFixture(t)
	ctx := context.Background()
	listing, _ := fx.seedListingAndMatch(t, 20)
	otherListing, otherMatch := fx.seedListingAndMatch(t, 30)
	_ = otherListing

	_, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: listing.ID,
		MatchID:   otherMatch.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Empty(t, fx.processor.intentInputs)
}

func TestCreateIntentProcessorFailure(t *testing.T) {
	fx := newPaymentsFixture(t)
	fx.processor.checkoutErr = errors.New("stripe down")
	ctx := context.Background()
	listing, match := fx.seedListingAndMatch(t, 20)

	_, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: listing.ID,
		MatchID:   match.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	// No Payment row may exist when the caller never got a checkout URL.
	var count int64
	require.NoError(t, fx.conn.Model(&models.Payment{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntentReusesExistingCustomer(t *testing.T) {
	fx := newPaymentsFixture(t)
	fx.processor.customerID = "cus_existing"
	ctx := context.Background()
	listing, match := fx.seedListingAndMatch(t, 20)

	_, err := fx.svc.CreateIntent(ctx, "sender@example.com", CreatePaymentRequest{
		ListingID: listing.ID,
		MatchID:   match.ID,
	})
	require.NoError(t, err)

	require.Len(t, fx.processor.intentInputs, 1)
	assert.Equal(t, "cus_existing", fx.processor.intentInputs[0].CustomerID)
	require.Len(t, fx.processor.checkoutInputs, 1)
	assert.Equal(t, "cus_existing", fx.processor.checkoutInputs[0].CustomerID)
}
