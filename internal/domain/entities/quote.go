package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuoteType routes a quote to exactly one downstream collaborator. Fixed at
// extraction and never altered afterward.
type QuoteType string

const (
	QuoteTypeScreenSpecific QuoteType = "screen_specific"
	QuoteTypeGeneralContext QuoteType = "general_context"
)

// FallbackGroup is the reserved bucket for quotes the external service
// declined to place. A quote is never discarded.
const FallbackGroup = "Uncategorised observations"

// Quote is one extracted verbatim quote.
type Quote struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	RunID         uuid.UUID `json:"run_id" gorm:"type:uuid;index"`
	SessionID     int       `json:"session_id" gorm:"not null"`
	SpeakerCode   string    `json:"speaker_code" gorm:"type:varchar(16)"`
	StartTime     float64   `json:"start_time"`
	EndTime       float64   `json:"end_time"`
	Text          string    `json:"text" gorm:"type:text;not null"`
	QuoteType     QuoteType `json:"quote_type" gorm:"type:varchar(20);not null"`
	AssignedGroup string    `json:"assigned_group,omitempty" gorm:"type:varchar(255)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a quote with a fresh id.
func NewQuote(sessionID int, speakerCode, text string, start, end float64, qt QuoteType) *Quote {
	return &Quote{
		ID:          uuid.New(),
		SessionID:   sessionID,
		SpeakerCode: speakerCode,
		StartTime:   start,
		EndTime:     end,
		Text:        text,
		QuoteType:   qt,
	}
}

// GroupAssignment is the raw output of an external clustering or grouping
// service: one named group and the indices of the quotes it claims. The
// service promises each quote appears in exactly one group; the partitioner
// does not trust that promise.
type GroupAssignment struct {
	Group        string `json:"group"`
	QuoteIndices []int  `json:"quote_indices"`
}

// PlacementKind distinguishes the two destination sets.
type PlacementKind string

const (
	PlacementKindScreen PlacementKind = "screen"
	PlacementKindTheme  PlacementKind = "theme"
)

// FinalPlacement is the exclusive destination of one quote after the safety
// net has run: exactly one placement exists per input quote.
type FinalPlacement struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key"`
	RunID       uuid.UUID                   `json:"run_id" gorm:"type:uuid;index"`
	QuoteID     uuid.UUID                   `json:"quote_id" gorm:"type:uuid;not null;index"`
	Group       string                      `json:"group" gorm:"column:group_name;type:varchar(255);not null"`
	Kind        PlacementKind               `json:"kind" gorm:"type:varchar(10);not null"`
	Fallback    bool                        `json:"fallback" gorm:"default:false"`
	DemotedFrom datatypes.JSONSlice[string] `json:"demoted_from,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (FinalPlacement) TableName() string {
	return "quote_placements"
}
