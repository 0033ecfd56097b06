package entities

// SpeakerRole is the resolved role of a speaker within a session
type SpeakerRole string

const (
	SpeakerRoleResearcher  SpeakerRole = "researcher"
	SpeakerRoleParticipant SpeakerRole = "participant"
	SpeakerRoleObserver    SpeakerRole = "observer"
	SpeakerRoleUnknown     SpeakerRole = "unknown"
)

// ParseSpeakerRole maps a free-form role string (as returned by the LLM) to a
// SpeakerRole. Anything unrecognized is unknown rather than an error.
func ParseSpeakerRole(s string) SpeakerRole {
	switch SpeakerRole(s) {
	case SpeakerRoleResearcher, SpeakerRoleParticipant, SpeakerRoleObserver:
		return SpeakerRole(s)
	}
	switch s {
	case "moderator", "interviewer", "facilitator":
		return SpeakerRoleResearcher
	case "interviewee", "user", "respondent":
		return SpeakerRoleParticipant
	case "notetaker", "note-taker", "stakeholder":
		return SpeakerRoleObserver
	}
	return SpeakerRoleUnknown
}

// TranscriptSegment is a single speaker turn. Start and end are seconds,
// parsed exactly once at ingestion and never re-parsed from formatted strings
// within a run. Role and SpeakerCode are filled in by the speaker resolver.
type TranscriptSegment struct {
	SessionID    int         `json:"session_id"`
	SpeakerLabel string      `json:"speaker_label"`
	StartTime    float64     `json:"start_time"`
	EndTime      float64     `json:"end_time"`
	Text         string      `json:"text"`
	Role         SpeakerRole `json:"role"`
	SpeakerCode  string      `json:"speaker_code,omitempty"`
}

// Duration returns the segment length in seconds.
func (t TranscriptSegment) Duration() float64 {
	d := t.EndTime - t.StartTime
	if d < 0 {
		return 0
	}
	return d
}

// SpeakerInfo is an enrichment record for one raw speaker label, merged into
// a session's people registry.
type SpeakerInfo struct {
	SpeakerLabel string      `json:"speaker_label"`
	Role         SpeakerRole `json:"role"`
	PersonName   string      `json:"person_name,omitempty"`
	JobTitle     string      `json:"job_title,omitempty"`
}

// PeopleRegistry accumulates per-label enrichment across resolver passes.
// Empty fields never overwrite previously known non-empty values.
type PeopleRegistry map[string]SpeakerInfo

// Merge folds an enrichment record into the registry.
func (r PeopleRegistry) Merge(info SpeakerInfo) {
	cur, ok := r[info.SpeakerLabel]
	if !ok {
		r[info.SpeakerLabel] = info
		return
	}
	if info.Role != SpeakerRoleUnknown && info.Role != "" {
		cur.Role = info.Role
	}
	if info.PersonName != "" {
		cur.PersonName = info.PersonName
	}
	if info.JobTitle != "" {
		cur.JobTitle = info.JobTitle
	}
	r[info.SpeakerLabel] = cur
}
