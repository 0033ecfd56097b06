package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/pkg/llm"
	"github.com/insightloop/interview-insights/pkg/validator"
)

// Extractor pulls typed verbatim quotes out of a resolved session
// transcript.
type Extractor interface {
	Extract(ctx context.Context, sessionID int, segments []entities.TranscriptSegment) ([]entities.Quote, error)
}

const extractPromptTemplate = `You are extracting notable verbatim quotes from a user research interview.
Quote only participants and observers, never the researcher. Keep each quote
short and verbatim.

Classify every quote:
- "screen_specific" if it refers to a concrete screen, page, or UI element.
- "general_context" for everything else (habits, feelings, background).

Return ONLY a JSON array:
[{"speaker_code": "p1", "start_time": 12.5, "end_time": 18.0, "text": "...", "quote_type": "screen_specific"}]

Transcript:
---
%s
---`

type extractedQuote struct {
	SpeakerCode string  `json:"speaker_code" validate:"required"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Text        string  `json:"text" validate:"required"`
	QuoteType   string  `json:"quote_type" validate:"required,oneof=screen_specific general_context"`
}

type llmExtractor struct {
	client    llm.Client
	validator *validator.CustomValidator
	logger    *zap.Logger
}

// NewLLMExtractor creates a quote extractor backed by a text-generation
// client.
func NewLLMExtractor(client llm.Client, logger *zap.Logger) Extractor {
	return &llmExtractor{client: client, validator: validator.New(), logger: logger}
}

func (e *llmExtractor) Extract(ctx context.Context, sessionID int, segments []entities.TranscriptSegment) ([]entities.Quote, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, seg := range segments {
		code := seg.SpeakerCode
		if code == "" {
			code = seg.SpeakerLabel
		}
		fmt.Fprintf(&b, "[%.1f-%.1f] %s: %s\n", seg.StartTime, seg.EndTime, code, seg.Text)
	}

	content, err := e.client.Complete(ctx, fmt.Sprintf(extractPromptTemplate, b.String()))
	if err != nil {
		return nil, fmt.Errorf("quote extraction request: %w", err)
	}

	var items []extractedQuote
	if err := json.Unmarshal([]byte(llm.ExtractJSON(content)), &items); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	out := make([]entities.Quote, 0, len(items))
	for _, item := range items {
		if err := e.validator.Validate(item); err != nil {
			if e.logger != nil {
				e.logger.Warn("dropping invalid extracted quote",
					zap.Int("session_id", sessionID),
					zap.Error(err),
				)
			}
			continue
		}
		q := entities.NewQuote(sessionID, item.SpeakerCode, strings.TrimSpace(item.Text),
			item.StartTime, item.EndTime, entities.QuoteType(item.QuoteType))
		out = append(out, *q)
	}

	if e.logger != nil {
		e.logger.Info("quotes extracted",
			zap.Int("session_id", sessionID),
			zap.Int("count", len(out)),
		)
	}
	return out, nil
}
