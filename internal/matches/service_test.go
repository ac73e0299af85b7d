package matches

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
)

type fakeMatchRepo struct {
	matches map[uuid.UUID]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[uuid.UUID]*models.Match{}}
}

func (f *fakeMatchRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeMatchRepo) Create(_ context.Context, match *models.Match) (*models.Match, error) {
	f.matches[match.ID] = match
	return match, nil
}

func (f *fakeMatchRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	if m, ok := f.matches[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMatchRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.matches {
		if m.SenderID == userID || m.TravelerID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.MatchStatus) error {
	if m, ok := f.matches[id]; ok {
		m.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

type fakeListingFinder struct {
	listings map[uuid.UUID]*models.Listing
}

func (f *fakeListingFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T) (Service, *fakeMatchRepo, *fakeListingFinder) {
	t.Helper()
	repo := newFakeMatchRepo()
	finder := &fakeListingFinder{listings: map[uuid.UUID]*models.Listing{}}
	svc, err := NewService(repo, finder)
	require.NoError(t, err)
	return svc, repo, finder
}

func activeListing(finder *fakeListingFinder) *models.Listing {
	listing := &models.Listing{ID: uuid.New(), UserID: uuid.New(), IsActive: true}
	finder.listings[listing.ID] = listing
	return listing
}

func TestCreateMatch(t *testing.T) {
	svc, _, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)

	sender := uuid.New()
	traveler := uuid.New()
	resp, err := svc.Create(ctx, sender, CreateMatchRequest{
		ListingID:   listing.ID,
		TravelerID:  traveler,
		PriceAgreed: 42.509,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MatchStatusPending, resp.Status)
	assert.Equal(t, "42.51", resp.PriceAgreed.StringFixed(2))
}

func TestCreateMatchRejectsSelfPairing(t *testing.T) {
	svc, _, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)

	actor := uuid.New()
	_, err := svc.Create(ctx, actor, CreateMatchRequest{ListingID: listing.ID, TravelerID: actor, PriceAgreed: 10})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateMatchInactiveListing(t *testing.T) {
	svc, _, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)
	listing.IsActive = false

	_, err := svc.Create(ctx, uuid.New(), CreateMatchRequest{ListingID: listing.ID, TravelerID: uuid.New(), PriceAgreed: 10})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAcceptOnlyTraveler(t *testing.T) {
	svc, repo, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)

	sender := uuid.New()
	traveler := uuid.New()
	created, err := svc.Create(ctx, sender, CreateMatchRequest{ListingID: listing.ID, TravelerID: traveler, PriceAgreed: 30})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, sender, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	accepted, err := svc.Accept(ctx, traveler, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MatchStatusAccepted, accepted.Status)
	assert.Equal(t, enums.MatchStatusAccepted, repo.matches[created.ID].Status)
}

func TestCancelTransitions(t *testing.T) {
	svc, repo, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)

	sender := uuid.New()
	traveler := uuid.New()
	created, err := svc.Create(ctx, sender, CreateMatchRequest{ListingID: listing.ID, TravelerID: traveler, PriceAgreed: 30})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, sender, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MatchStatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = svc.Accept(ctx, traveler, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// A completed match cannot be cancelled.
	repo.matches[created.ID].Status = enums.MatchStatusCompleted
	_, err = svc.Cancel(ctx, traveler, created.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestStrangerCannotTouchMatch(t *testing.T) {
	svc, _, finder := newTestService(t)
	ctx := context.Background()
	listing := activeListing(finder)

	created, err := svc.Create(ctx, uuid.New(), CreateMatchRequest{ListingID: listing.ID, TravelerID: uuid.New(), PriceAgreed: 30})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}
