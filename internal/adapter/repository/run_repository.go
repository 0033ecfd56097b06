package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// RunRepository implements the run repository interface using GORM
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// Create creates a new run
func (r *RunRepository) Create(ctx context.Context, run *entities.ResolutionRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FindByID finds a run by ID
func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ResolutionRun, error) {
	var run entities.ResolutionRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find run by ID: %w", err)
	}
	return &run, nil
}

// FindLiveByStudyPath finds a pending or processing run for a study folder
func (r *RunRepository) FindLiveByStudyPath(ctx context.Context, studyPath string) (*entities.ResolutionRun, error) {
	var run entities.ResolutionRun
	if err := r.db.WithContext(ctx).
		Where("study_path = ? AND status IN ?", studyPath,
			[]entities.RunStatus{entities.RunStatusPending, entities.RunStatusProcessing}).
		Order("created_at DESC").
		First(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live run: %w", err)
	}
	return &run, nil
}

// List returns runs ordered by creation time, newest first
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]*entities.ResolutionRun, error) {
	var runs []*entities.ResolutionRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// MarkStarted transitions a run to processing
func (r *RunRepository) MarkStarted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).
		Model(&entities.ResolutionRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.RunStatusProcessing,
			"started_at": now,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark run started: %w", err)
	}
	return nil
}

// MarkCompleted records the run outcome and final counter
func (r *RunRepository) MarkCompleted(ctx context.Context, id uuid.UUID, sessionCount, participantCounter int) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).
		Model(&entities.ResolutionRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              entities.RunStatusCompleted,
			"session_count":       sessionCount,
			"participant_counter": participantCounter,
			"completed_at":        now,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}

// MarkFailed records a run failure
func (r *RunRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).
		Model(&entities.ResolutionRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        entities.RunStatusFailed,
			"error_message": errMsg,
			"completed_at":  now,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}
