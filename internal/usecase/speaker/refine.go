package speaker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/internal/infrastructure/cache"
	"github.com/insightloop/interview-insights/pkg/llm"
	"github.com/insightloop/interview-insights/pkg/validator"
)

// Refiner is the external speaker-role refinement collaborator. An empty
// result means no refinement; implementations must never panic into the
// caller.
type Refiner interface {
	Refine(ctx context.Context, window string, labels []string) ([]entities.SpeakerInfo, error)
}

const refinePromptTemplate = `You are analyzing the opening minutes of a user research interview transcript.
For each speaker label listed, decide their role in the session and, when the
transcript reveals it, their name and job title.

Speaker labels: %s

Return ONLY a JSON array, one object per label:
[{"speaker_label": "...", "role": "researcher|participant|observer", "person_name": "", "job_title": ""}]

Rules:
- "researcher" asks the questions and runs the session.
- "participant" answers questions about their own experience.
- "observer" is a notetaker or stakeholder who rarely speaks.
- Leave person_name and job_title empty unless stated in the transcript.

Transcript:
---
%s
---`

// refinementItem is the wire shape of one LLM response entry.
type refinementItem struct {
	SpeakerLabel string `json:"speaker_label" validate:"required"`
	Role         string `json:"role" validate:"required"`
	PersonName   string `json:"person_name"`
	JobTitle     string `json:"job_title"`
}

type llmRefiner struct {
	client    llm.Client
	validator *validator.CustomValidator
	store     cache.Store
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLLMRefiner creates a Refiner backed by a text-generation client. The
// store may be nil to disable response caching.
func NewLLMRefiner(client llm.Client, store cache.Store, cacheTTL, timeout time.Duration, logger *zap.Logger) Refiner {
	return &llmRefiner{
		client:    client,
		validator: validator.New(),
		store:     store,
		cacheTTL:  cacheTTL,
		timeout:   timeout,
		logger:    logger,
	}
}

// Refine asks the LLM for per-label roles. Every failure mode (request,
// parse, validation) returns an error the caller treats as "no refinement";
// partial responses return the valid subset.
func (r *llmRefiner) Refine(ctx context.Context, window string, labels []string) ([]entities.SpeakerInfo, error) {
	if len(labels) == 0 || strings.TrimSpace(window) == "" {
		return nil, nil
	}

	key := refineCacheKey(window, labels)
	if r.store != nil {
		if cached, ok := r.store.Get(ctx, key); ok {
			if infos, err := r.parse(cached, labels); err == nil {
				if r.logger != nil {
					r.logger.Debug("refinement served from cache", zap.Int("labels", len(labels)))
				}
				return infos, nil
			}
			// A poisoned cache entry falls through to a fresh call.
		}
	}

	prompt := fmt.Sprintf(refinePromptTemplate, strings.Join(labels, ", "), window)

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	content, err := r.client.Complete(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("refinement request: %w", err)
	}

	infos, err := r.parse(content, labels)
	if err != nil {
		return nil, err
	}

	if r.store != nil && len(infos) > 0 {
		r.store.Set(ctx, key, content, r.cacheTTL)
	}

	return infos, nil
}

// parse decodes and validates the response, keeping only items for labels we
// actually asked about.
func (r *llmRefiner) parse(content string, labels []string) ([]entities.SpeakerInfo, error) {
	var items []refinementItem
	if err := json.Unmarshal([]byte(llm.ExtractJSON(content)), &items); err != nil {
		return nil, fmt.Errorf("failed to parse refinement response: %w", err)
	}

	asked := make(map[string]bool, len(labels))
	for _, l := range labels {
		asked[l] = true
	}

	infos := make([]entities.SpeakerInfo, 0, len(items))
	for _, item := range items {
		if err := r.validator.Validate(item); err != nil {
			if r.logger != nil {
				r.logger.Warn("dropping invalid refinement item", zap.Error(err))
			}
			continue
		}
		if !asked[item.SpeakerLabel] {
			if r.logger != nil {
				r.logger.Warn("dropping refinement for unknown label",
					zap.String("speaker_label", item.SpeakerLabel))
			}
			continue
		}
		infos = append(infos, entities.SpeakerInfo{
			SpeakerLabel: item.SpeakerLabel,
			Role:         entities.ParseSpeakerRole(strings.ToLower(strings.TrimSpace(item.Role))),
			PersonName:   strings.TrimSpace(item.PersonName),
			JobTitle:     strings.TrimSpace(item.JobTitle),
		})
	}

	return infos, nil
}

func refineCacheKey(window string, labels []string) string {
	h := sha256.New()
	h.Write([]byte(window))
	for _, l := range labels {
		h.Write([]byte{0})
		h.Write([]byte(l))
	}
	return "refine:" + hex.EncodeToString(h.Sum(nil))
}

// refinementWindow concatenates segments until the cumulative spoken
// duration reaches windowSec. Measured by duration, not segment count; at
// least one segment is always included.
func refinementWindow(segments []entities.TranscriptSegment, windowSec float64) string {
	var b strings.Builder
	var elapsed float64

	for i, seg := range segments {
		if i > 0 && elapsed >= windowSec {
			break
		}
		b.WriteString(seg.SpeakerLabel)
		b.WriteString(": ")
		b.WriteString(seg.Text)
		b.WriteString("\n")
		elapsed += seg.Duration()
	}

	return b.String()
}
