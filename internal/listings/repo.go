package listings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// SearchFilters narrows a listing search. Zero values mean "any".
type SearchFilters struct {
	Origin      string
	Destination string
	Type        enums.ListingType
	Limit       int
}

const defaultSearchLimit = 50

// Repository exposes listing persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Search(ctx context.Context, filters SearchFilters) ([]models.Listing, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	RecentRoutePrices(ctx context.Context, origin, destination string, limit int) ([]decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]models.Listing, error) {
	limit := filters.Limit
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true)

	if filters.Origin != "" {
		query = query.Where("LOWER(origin) LIKE '%' || LOWER(?) || '%'", filters.Origin)
	}
	if filters.Destination != "" {
		query = query.Where("LOWER(destination) LIKE '%' || LOWER(?) || '%'", filters.Destination)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}

	var results []models.Listing
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// RecentRoutePrices returns the newest listing prices whose route matches the
// provided origin/destination substrings, newest first.
func (r *repository) RecentRoutePrices(ctx context.Context, origin, destination string, limit int) ([]decimal.Decimal, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Select("price_usd").
		Where("LOWER(origin) LIKE '%' || LOWER(?) || '%'", origin).
		Where("LOWER(destination) LIKE '%' || LOWER(?) || '%'", destination).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		prices = append(prices, row.PriceUSD)
	}
	return prices, nil
}
