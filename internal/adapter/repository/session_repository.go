package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// SessionRepository implements the session record repository interface using GORM
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session record repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create creates a new session record
func (r *SessionRepository) Create(ctx context.Context, record *entities.SessionRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}
	return nil
}

// FindByRunID finds all session records for a run, ordered by session id
func (r *SessionRepository) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.SessionRecord, error) {
	var records []*entities.SessionRecord
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("session_id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find session records by run ID: %w", err)
	}
	return records, nil
}

// FindByRunAndSession finds one session record
func (r *SessionRepository) FindByRunAndSession(ctx context.Context, runID uuid.UUID, sessionID int) (*entities.SessionRecord, error) {
	var record entities.SessionRecord
	if err := r.db.WithContext(ctx).
		Where("run_id = ? AND session_id = ?", runID, sessionID).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session record: %w", err)
	}
	return &record, nil
}

// SpeakerRepository implements the speaker repository interface using GORM
type SpeakerRepository struct {
	db *gorm.DB
}

// NewSpeakerRepository creates a new speaker repository
func NewSpeakerRepository(db *gorm.DB) *SpeakerRepository {
	return &SpeakerRepository{
		db: db,
	}
}

// CreateBatch persists all resolved speakers of a session
func (r *SpeakerRepository) CreateBatch(ctx context.Context, speakers []entities.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&speakers).Error; err != nil {
		return fmt.Errorf("failed to create speakers: %w", err)
	}
	return nil
}

// FindByRunID finds all speakers of a run, ordered by session and code
func (r *SpeakerRepository) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Speaker, error) {
	var speakers []*entities.Speaker
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("session_id ASC, speaker_code ASC").
		Find(&speakers).Error; err != nil {
		return nil, fmt.Errorf("failed to find speakers by run ID: %w", err)
	}
	return speakers, nil
}
