package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RunStatus tracks the lifecycle of one resolution run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// ResolutionRun is one processing pass over a study folder.
type ResolutionRun struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	StudyPath          string     `json:"study_path" gorm:"type:varchar(1024);not null;index"`
	Status             RunStatus  `json:"status" gorm:"type:varchar(20);not null;index"`
	SessionCount       int        `json:"session_count"`
	ParticipantCounter int        `json:"participant_counter"` // next unused participant number after the run
	ErrorMessage       string     `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ResolutionRun) TableName() string {
	return "resolution_runs"
}

// NewResolutionRun creates a pending run for a study folder. The participant
// counter starts at 1: the next unused participant number.
func NewResolutionRun(studyPath string) *ResolutionRun {
	return &ResolutionRun{
		ID:                 uuid.New(),
		StudyPath:          studyPath,
		Status:             RunStatusPending,
		ParticipantCounter: 1,
	}
}

// SessionRecord is the persisted form of one resolved session: the grouped
// files, the resolved segments, and the label-to-code map, stored as jsonb.
type SessionRecord struct {
	ID                    uuid.UUID                              `json:"id" gorm:"type:uuid;primary_key"`
	RunID                 uuid.UUID                              `json:"run_id" gorm:"type:uuid;not null;index"`
	SessionID             int                                    `json:"session_id" gorm:"not null"`
	HasExistingTranscript bool                                   `json:"has_existing_transcript" gorm:"default:false"`
	Files                 datatypes.JSONSlice[InputFile]         `json:"files" gorm:"type:jsonb"`
	Segments              datatypes.JSONSlice[TranscriptSegment] `json:"segments" gorm:"type:jsonb"`
	LabelCodes            datatypes.JSONType[map[string]string]  `json:"label_codes" gorm:"type:jsonb"`
	Degraded              bool                                   `json:"degraded" gorm:"default:false"` // heuristic-only fallback was used
	CreatedAt             time.Time                              `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time                              `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SessionRecord) TableName() string {
	return "session_records"
}

// NewLabelCodes wraps a label-to-code map for jsonb storage.
func NewLabelCodes(codes map[string]string) datatypes.JSONType[map[string]string] {
	return datatypes.NewJSONType(codes)
}
