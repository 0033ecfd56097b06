package transcribe

import (
	"context"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// Transcriber produces time-ordered transcript segments for one session's
// primary media file. Implementations must return segments with float-second
// timestamps and platform-supplied speaker labels.
type Transcriber interface {
	Transcribe(ctx context.Context, session entities.InputSession) ([]entities.TranscriptSegment, error)
}
