package matches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carryconnect/carryconnect-backend/pkg/db/models"
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Repository exposes match persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, match *models.Match) (*models.Match, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a matches repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, match *models.Match) (*models.Match, error) {
	if err := r.db.WithContext(ctx).Create(match).Error; err != nil {
		return nil, err
	}
	return match, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Match, error) {
	var results []models.Match
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR traveler_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", id).
		Update("status", status).Error
}
