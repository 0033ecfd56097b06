package run

import (
	"time"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// RunResponse is the API shape of one resolution run.
type RunResponse struct {
	ID                 string     `json:"id"`
	StudyPath          string     `json:"study_path"`
	Status             string     `json:"status"`
	SessionCount       int        `json:"session_count"`
	ParticipantCounter int        `json:"participant_counter"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// FromRun converts a run entity.
func FromRun(r *entities.ResolutionRun) RunResponse {
	return RunResponse{
		ID:                 r.ID.String(),
		StudyPath:          r.StudyPath,
		Status:             string(r.Status),
		SessionCount:       r.SessionCount,
		ParticipantCounter: r.ParticipantCounter,
		ErrorMessage:       r.ErrorMessage,
		StartedAt:          r.StartedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
	}
}

// AcceptedResponse acknowledges an asynchronous run trigger.
type AcceptedResponse struct {
	StudyPath string `json:"study_path"`
	Status    string `json:"status"`
}

// SessionResponse is the API shape of one resolved session.
type SessionResponse struct {
	SessionID             int                          `json:"session_id"`
	HasExistingTranscript bool                         `json:"has_existing_transcript"`
	Files                 []entities.InputFile         `json:"files"`
	Segments              []entities.TranscriptSegment `json:"segments"`
	LabelCodes            map[string]string            `json:"label_codes"`
	Degraded              bool                         `json:"degraded"`
}

// FromSessionRecord converts a session record entity.
func FromSessionRecord(rec *entities.SessionRecord) SessionResponse {
	return SessionResponse{
		SessionID:             rec.SessionID,
		HasExistingTranscript: rec.HasExistingTranscript,
		Files:                 rec.Files,
		Segments:              rec.Segments,
		LabelCodes:            rec.LabelCodes.Data(),
		Degraded:              rec.Degraded,
	}
}

// SpeakerResponse is the API shape of one resolved speaker.
type SpeakerResponse struct {
	SessionID     int     `json:"session_id"`
	SpeakerLabel  string  `json:"speaker_label"`
	SpeakerCode   string  `json:"speaker_code"`
	Role          string  `json:"role"`
	PersonName    string  `json:"person_name,omitempty"`
	JobTitle      string  `json:"job_title,omitempty"`
	QuestionRatio float64 `json:"question_ratio"`
	PhraseHits    int     `json:"phrase_hits"`
	RefinedByLLM  bool    `json:"refined_by_llm"`
}

// FromSpeaker converts a speaker entity.
func FromSpeaker(s *entities.Speaker) SpeakerResponse {
	return SpeakerResponse{
		SessionID:     s.SessionID,
		SpeakerLabel:  s.SpeakerLabel,
		SpeakerCode:   s.SpeakerCode,
		Role:          string(s.Role),
		PersonName:    s.PersonName,
		JobTitle:      s.JobTitle,
		QuestionRatio: s.QuestionRatio,
		PhraseHits:    s.PhraseHits,
		RefinedByLLM:  s.RefinedByLLM,
	}
}

// PlacementResponse is the API shape of one quote placement.
type PlacementResponse struct {
	QuoteID     string   `json:"quote_id"`
	Group       string   `json:"group"`
	Kind        string   `json:"kind"`
	Fallback    bool     `json:"fallback"`
	DemotedFrom []string `json:"demoted_from,omitempty"`
}

// FromPlacement converts a placement entity.
func FromPlacement(p *entities.FinalPlacement) PlacementResponse {
	return PlacementResponse{
		QuoteID:     p.QuoteID.String(),
		Group:       p.Group,
		Kind:        string(p.Kind),
		Fallback:    p.Fallback,
		DemotedFrom: p.DemotedFrom,
	}
}
