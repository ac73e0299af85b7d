package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
)

type listingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Service defines the match operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, senderID uuid.UUID, req CreateMatchRequest) (*MatchResponse, error)
	Get(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]MatchResponse, error)
	Accept(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error)
	Cancel(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error)
}

type service struct {
	repo     Repository
	listings listingFinder
}

// NewService constructs a matches service.
func NewService(repo Repository, listings listingFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("matches repository is required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	return &service{repo: repo, listings: listings}, nil
}

func (s *service) Create(ctx context.Context, senderID uuid.UUID, req CreateMatchRequest) (*MatchResponse, error) {
	if senderID == req.TravelerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender and traveler must be different users")
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}
	if !listing.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer active")
	}

	match := &models.Match{
		ID:          uuid.New(),
		ListingID:   req.ListingID,
		SenderID:    senderID,
		TravelerID:  req.TravelerID,
		Status:      enums.MatchStatusPending,
		PriceAgreed: decimal.NewFromFloat(req.PriceAgreed).Round(2),
	}
	created, err := s.repo.Create(ctx, match)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create match")
	}

	resp := toResponse(created)
	return &resp, nil
}

func (s *service) Get(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error) {
	match, err := s.findForParty(ctx, actorID, matchID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(match)
	return &resp, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]MatchResponse, error) {
	results, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list matches")
	}
	out := make([]MatchResponse, 0, len(results))
	for i := range results {
		out = append(out, toResponse(&results[i]))
	}
	return out, nil
}

// Accept moves a pending match to accepted. Only the traveler accepts.
func (s *service) Accept(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error) {
	match, err := s.findForParty(ctx, actorID, matchID)
	if err != nil {
		return nil, err
	}
	if match.TravelerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the traveler can accept a match")
	}
	return s.transition(ctx, match, enums.MatchStatusAccepted)
}

// Cancel moves a non-completed match to cancelled. Either party can cancel.
func (s *service) Cancel(ctx context.Context, actorID, matchID uuid.UUID) (*MatchResponse, error) {
	match, err := s.findForParty(ctx, actorID, matchID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, match, enums.MatchStatusCancelled)
}

func (s *service) transition(ctx context.Context, match *models.Match, next enums.MatchStatus) (*MatchResponse, error) {
	if !match.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move match from %s to %s", match.Status, next))
	}
	if err := s.repo.UpdateStatus(ctx, match.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update match status")
	}
	match.Status = next
	resp := toResponse(match)
	return &resp, nil
}

func (s *service) findForParty(ctx context.Context, actorID, matchID uuid.UUID) (*models.Match, error) {
	match, err := s.repo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "match not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find match")
	}
	if match.SenderID != actorID && match.TravelerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this match")
	}
	return match, nil
}

func toResponse(match *models.Match) MatchResponse {
	return MatchResponse{
		ID:          match.ID,
		ListingID:   match.ListingID,
		SenderID:    match.SenderID,
		TravelerID:  match.TravelerID,
		Status:      match.Status,
		PriceAgreed: match.PriceAgreed,
		CreatedAt:   match.CreatedAt,
	}
}
