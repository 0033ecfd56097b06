package speaker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// Service resolves roles and stable speaker codes for one session's
// segments. Resolution never fails: the heuristic pass is a pure,
// always-succeeding fallback and the LLM refinement is best-effort.
type Service interface {
	// Resolve assigns role and speaker_code to every segment in place and
	// returns the label-to-code map, the resolved speaker records, and the
	// updated study-wide participant counter. The in-place mutation is a
	// documented side effect; counter threading is the caller's job.
	Resolve(ctx context.Context, sessionID int, segments []entities.TranscriptSegment, counter int) (map[string]string, []entities.Speaker, int)
}

// Options configures the resolver.
type Options struct {
	Lexicon          []string
	QuestionRatioMin float64
	PhraseHitsMin    int
	WindowSec        float64
}

type speakerService struct {
	refiner Refiner // nil disables the refinement pass
	opts    Options
	logger  *zap.Logger
}

// NewService creates a speaker resolution service. A nil refiner disables
// the LLM pass entirely.
func NewService(refiner Refiner, opts Options, logger *zap.Logger) Service {
	if len(opts.Lexicon) == 0 {
		opts.Lexicon = defaultLexicon
	}
	if opts.QuestionRatioMin <= 0 {
		opts.QuestionRatioMin = 0.35
	}
	if opts.PhraseHitsMin <= 0 {
		opts.PhraseHitsMin = 2
	}
	if opts.WindowSec <= 0 {
		opts.WindowSec = 300
	}
	return &speakerService{refiner: refiner, opts: opts, logger: logger}
}

func (s *speakerService) Resolve(ctx context.Context, sessionID int, segments []entities.TranscriptSegment, counter int) (map[string]string, []entities.Speaker, int) {
	if len(segments) == 0 {
		return map[string]string{}, nil, counter
	}

	roles, stats, order := heuristicRoles(segments, s.opts.Lexicon, s.opts.QuestionRatioMin, s.opts.PhraseHitsMin)

	registry := make(entities.PeopleRegistry)
	refined := make(map[string]bool)

	if s.refiner != nil {
		window := refinementWindow(segments, s.opts.WindowSec)
		infos, err := s.refiner.Refine(ctx, window, order)
		if err != nil {
			// Degraded, not broken: the heuristic assignment stands for
			// every label.
			if s.logger != nil {
				s.logger.Warn("speaker refinement unavailable, keeping heuristic roles",
					zap.Int("session_id", sessionID),
					zap.Error(err),
				)
			}
		}
		for _, info := range infos {
			if info.Role != entities.SpeakerRoleUnknown {
				roles[info.SpeakerLabel] = info.Role
				refined[info.SpeakerLabel] = true
			}
			registry.Merge(info)
		}
	}

	codes, counter := assignCodes(order, roles, counter)

	for i := range segments {
		label := segments[i].SpeakerLabel
		segments[i].Role = roles[label]
		segments[i].SpeakerCode = codes[label]
	}

	speakers := make([]entities.Speaker, 0, len(order))
	for _, label := range order {
		code := codes[label]
		if !entities.ValidSpeakerCode(code) {
			// Codes are produced locally; a malformed one is a defect, not
			// a runtime condition.
			panic(fmt.Sprintf("speaker: malformed code %q for label %q", code, label))
		}
		sp := entities.Speaker{
			SessionID:     sessionID,
			SpeakerLabel:  label,
			SpeakerCode:   code,
			Role:          roles[label],
			QuestionRatio: stats[label].questionRatio,
			PhraseHits:    stats[label].phraseHits,
			RefinedByLLM:  refined[label],
		}
		if info, ok := registry[label]; ok {
			sp.PersonName = info.PersonName
			sp.JobTitle = info.JobTitle
		}
		speakers = append(speakers, sp)
	}

	if s.logger != nil {
		s.logger.Info("speaker resolution completed",
			zap.Int("session_id", sessionID),
			zap.Int("speakers", len(speakers)),
			zap.Int("next_participant", counter),
		)
	}

	return codes, speakers, counter
}
