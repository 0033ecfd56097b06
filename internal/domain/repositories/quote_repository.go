package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// QuoteRepository defines the interface for extracted quote data access
type QuoteRepository interface {
	// CreateBatch persists extracted quotes
	CreateBatch(ctx context.Context, quotes []entities.Quote) error

	// FindByRunID finds all quotes of a run
	FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Quote, error)
}

// PlacementRepository defines the interface for quote placement data access
type PlacementRepository interface {
	// CreateBatch persists final placements
	CreateBatch(ctx context.Context, placements []entities.FinalPlacement) error

	// FindByRunID finds all placements of a run, grouped output order
	FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.FinalPlacement, error)
}
