package speaker

import (
	"fmt"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// assignCodes maps each label to its stable speaker code. Moderator and
// observer numbering restarts at 1 per session; participant (and unknown)
// numbering consumes the global counter, which is incremented once per
// distinct label in first-appearance order and returned for the next
// session's resolution call.
func assignCodes(order []string, roles map[string]entities.SpeakerRole, counter int) (map[string]string, int) {
	codes := make(map[string]string, len(order))

	nextModerator := 1
	nextObserver := 1

	for _, label := range order {
		switch roles[label] {
		case entities.SpeakerRoleResearcher:
			codes[label] = fmt.Sprintf("m%d", nextModerator)
			nextModerator++
		case entities.SpeakerRoleObserver:
			codes[label] = fmt.Sprintf("o%d", nextObserver)
			nextObserver++
		default:
			// Participants and unknowns draw from the study-wide counter.
			codes[label] = fmt.Sprintf("p%d", counter)
			counter++
		}
	}

	return codes, counter
}
