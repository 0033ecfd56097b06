package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// QuoteRepository implements the quote repository interface using GORM
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{
		db: db,
	}
}

// CreateBatch persists extracted quotes
func (r *QuoteRepository) CreateBatch(ctx context.Context, quotes []entities.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&quotes).Error; err != nil {
		return fmt.Errorf("failed to create quotes: %w", err)
	}
	return nil
}

// FindByRunID finds all quotes of a run
func (r *QuoteRepository) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Quote, error) {
	var quotes []*entities.Quote
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("session_id ASC, start_time ASC").
		Find(&quotes).Error; err != nil {
		return nil, fmt.Errorf("failed to find quotes by run ID: %w", err)
	}
	return quotes, nil
}

// PlacementRepository implements the placement repository interface using GORM
type PlacementRepository struct {
	db *gorm.DB
}

// NewPlacementRepository creates a new placement repository
func NewPlacementRepository(db *gorm.DB) *PlacementRepository {
	return &PlacementRepository{
		db: db,
	}
}

// CreateBatch persists final placements
func (r *PlacementRepository) CreateBatch(ctx context.Context, placements []entities.FinalPlacement) error {
	if len(placements) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&placements).Error; err != nil {
		return fmt.Errorf("failed to create placements: %w", err)
	}
	return nil
}

// FindByRunID finds all placements of a run, grouped output order
func (r *PlacementRepository) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.FinalPlacement, error) {
	var placements []*entities.FinalPlacement
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("kind ASC, group_name ASC").
		Find(&placements).Error; err != nil {
		return nil, fmt.Errorf("failed to find placements by run ID: %w", err)
	}
	return placements, nil
}
