package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// SessionRepository defines the interface for session record data access
type SessionRepository interface {
	// Create creates a new session record
	Create(ctx context.Context, record *entities.SessionRecord) error

	// FindByRunID finds all session records for a run, ordered by session id
	FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.SessionRecord, error)

	// FindByRunAndSession finds one session record
	FindByRunAndSession(ctx context.Context, runID uuid.UUID, sessionID int) (*entities.SessionRecord, error)
}

// SpeakerRepository defines the interface for resolved speaker data access
type SpeakerRepository interface {
	// CreateBatch persists all resolved speakers of a session
	CreateBatch(ctx context.Context, speakers []entities.Speaker) error

	// FindByRunID finds all speakers of a run, ordered by session and code
	FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Speaker, error)
}
