package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// RunRepository defines the interface for resolution run data access
type RunRepository interface {
	// Create creates a new run
	Create(ctx context.Context, run *entities.ResolutionRun) error

	// FindByID finds a run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ResolutionRun, error)

	// FindLiveByStudyPath finds a pending or processing run for a study folder
	FindLiveByStudyPath(ctx context.Context, studyPath string) (*entities.ResolutionRun, error)

	// List returns runs ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*entities.ResolutionRun, error)

	// MarkStarted transitions a run to processing
	MarkStarted(ctx context.Context, id uuid.UUID) error

	// MarkCompleted records the run outcome and final counter
	MarkCompleted(ctx context.Context, id uuid.UUID, sessionCount, participantCounter int) error

	// MarkFailed records a run failure
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
