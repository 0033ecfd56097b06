package speaker

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// defaultLexicon is the built-in researcher phrase lexicon. Deployments can
// replace it with a YAML file via RESEARCHER_LEXICON_PATH.
var defaultLexicon = []string{
	"tell me about",
	"walk me through",
	"how do you usually",
	"can you describe",
	"can you show me",
	"what do you think",
	"why do you say",
	"how often do you",
	"have you ever",
	"what would you expect",
	"on a scale of",
	"anything else you",
}

// lexiconFile is the YAML shape for a phrase lexicon override.
type lexiconFile struct {
	Phrases []string `yaml:"phrases"`
}

// LoadLexicon reads a phrase lexicon from a YAML file. An empty path returns
// the built-in lexicon.
func LoadLexicon(path string) ([]string, error) {
	if path == "" {
		return defaultLexicon, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lf.Phrases) == 0 {
		return nil, fmt.Errorf("lexicon %s contains no phrases", path)
	}
	phrases := make([]string, 0, len(lf.Phrases))
	for _, p := range lf.Phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases, nil
}

// labelStats holds the heuristic signals for one raw speaker label.
type labelStats struct {
	utterances    int
	questions     int
	phraseHits    int
	questionRatio float64
}

// heuristicRoles scores every distinct label in the session and returns the
// per-label role plus the stats behind the decision, together with the
// labels in order of first appearance.
//
// A session where every segment already shares one label is the legacy
// single-code format: it collapses to a single UNKNOWN speaker instead of a
// researcher/participant split. That is deliberate backward compatibility.
func heuristicRoles(segments []entities.TranscriptSegment, lexicon []string, questionRatioMin float64, phraseHitsMin int) (map[string]entities.SpeakerRole, map[string]labelStats, []string) {
	stats := make(map[string]labelStats)
	var order []string

	for _, seg := range segments {
		st, seen := stats[seg.SpeakerLabel]
		if !seen {
			order = append(order, seg.SpeakerLabel)
		}
		st.utterances++
		if isInterrogative(seg.Text) {
			st.questions++
		}
		st.phraseHits += countPhraseHits(seg.Text, lexicon)
		stats[seg.SpeakerLabel] = st
	}

	for label, st := range stats {
		if st.utterances > 0 {
			st.questionRatio = float64(st.questions) / float64(st.utterances)
		}
		stats[label] = st
	}

	roles := make(map[string]entities.SpeakerRole, len(stats))

	if len(order) == 1 {
		roles[order[0]] = entities.SpeakerRoleUnknown
		return roles, stats, order
	}

	for label, st := range stats {
		if st.questionRatio >= questionRatioMin && st.phraseHits >= phraseHitsMin {
			roles[label] = entities.SpeakerRoleResearcher
		} else {
			roles[label] = entities.SpeakerRoleParticipant
		}
	}

	return roles, stats, order
}

// isInterrogative reports whether an utterance ends in a question mark,
// ignoring trailing quotes and brackets.
func isInterrogative(text string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(text), `"')]`+"`")
	return strings.HasSuffix(trimmed, "?")
}

// countPhraseHits counts lexicon phrases contained in the utterance.
func countPhraseHits(text string, lexicon []string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, phrase := range lexicon {
		hits += strings.Count(lower, phrase)
	}
	return hits
}
