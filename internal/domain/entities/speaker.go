package entities

import (
	"time"

	"github.com/google/uuid"
)

// ValidSpeakerCode reports whether a resolved code is well formed: first
// character one of m/o/p, remainder one or more digits.
func ValidSpeakerCode(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[0] {
	case 'm', 'o', 'p':
	default:
		return false
	}
	for i := 1; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Speaker is the persisted record of one resolved speaker in one session.
type Speaker struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RunID         uuid.UUID   `json:"run_id" gorm:"type:uuid;not null;index"`
	SessionID     int         `json:"session_id" gorm:"not null"`
	SpeakerLabel  string      `json:"speaker_label" gorm:"type:varchar(255);not null"`
	SpeakerCode   string      `json:"speaker_code" gorm:"type:varchar(16);not null"`
	Role          SpeakerRole `json:"role" gorm:"type:varchar(20);not null"`
	PersonName    string      `json:"person_name,omitempty" gorm:"type:varchar(255)"`
	JobTitle      string      `json:"job_title,omitempty" gorm:"type:varchar(255)"`
	QuestionRatio float64     `json:"question_ratio,omitempty"`
	PhraseHits    int         `json:"phrase_hits,omitempty"`
	RefinedByLLM  bool        `json:"refined_by_llm" gorm:"default:false"`
	CreatedAt     time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Speaker) TableName() string {
	return "speakers"
}
