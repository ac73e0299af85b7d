package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
)

// Service defines the listing operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingResponse, error)
	Search(ctx context.Context, query SearchListingsQuery) ([]ListingResponse, error)
	Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs a listings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	listingType, err := enums.ParseListingType(req.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing type")
	}

	travelDate, err := time.Parse(time.RFC3339, req.TravelDate)
	if err != nil {
		// Accept plain dates as well as full timestamps.
		travelDate, err = time.Parse("2006-01-02", req.TravelDate)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "travel_date must be RFC3339 or YYYY-MM-DD")
		}
	}

	listing := &models.Listing{
		ID:               uuid.New(),
		UserID:           ownerID,
		Type:             listingType,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Origin:           strings.TrimSpace(req.Origin),
		Destination:      strings.TrimSpace(req.Destination),
		TravelDate:       travelDate,
		PriceUSD:         decimal.NewFromFloat(req.PriceUSD).Round(2),
		WeightKG:         req.WeightKG,
		AvailableSpaceKG: req.AvailableSpaceKG,
		IsActive:         true,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
	}
	resp := toResponse(created)
	return &resp, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingResponse, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}
	resp := toResponse(listing)
	return &resp, nil
}

func (s *service) Search(ctx context.Context, query SearchListingsQuery) ([]ListingResponse, error) {
	filters := SearchFilters{
		Origin:      strings.TrimSpace(query.Origin),
		Destination: strings.TrimSpace(query.Destination),
		Limit:       query.Limit,
	}
	if query.Type != "" {
		listingType, err := enums.ParseListingType(query.Type)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing type")
		}
		filters.Type = listingType
	}

	results, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search listings")
	}

	out := make([]ListingResponse, 0, len(results))
	for i := range results {
		out = append(out, toResponse(&results[i]))
	}
	return out, nil
}

func (s *service) Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}

	if listing.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can deactivate a listing")
	}

	if !listing.IsActive {
		return nil
	}

	if err := s.repo.Deactivate(ctx, listingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate listing")
	}
	return nil
}

func toResponse(listing *models.Listing) ListingResponse {
	return ListingResponse{
		ID:               listing.ID,
		UserID:           listing.UserID,
		Type:             listing.Type,
		Title:            listing.Title,
		Description:      listing.Description,
		Origin:           listing.Origin,
		Destination:      listing.Destination,
		TravelDate:       listing.TravelDate,
		PriceUSD:         listing.PriceUSD,
		WeightKG:         listing.WeightKG,
		AvailableSpaceKG: listing.AvailableSpaceKG,
		IsActive:         listing.IsActive,
		CreatedAt:        listing.CreatedAt,
	}
}
