package quotes

import (
	"context"
	"errors"
	"testing"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func TestExtractParsesAndValidates(t *testing.T) {
	client := &fakeLLM{response: "```json\n" + `[
  {"speaker_code": "p1", "start_time": 12.5, "end_time": 18.0, "text": "The search never finds my orders.", "quote_type": "screen_specific"},
  {"speaker_code": "p1", "start_time": 40.0, "end_time": 44.0, "text": "I just do not trust it.", "quote_type": "general_context"},
  {"speaker_code": "", "start_time": 0, "end_time": 0, "text": "missing code", "quote_type": "general_context"},
  {"speaker_code": "p2", "start_time": 0, "end_time": 0, "text": "bad type", "quote_type": "observation"}
]` + "\n```"}

	e := NewLLMExtractor(client, nil)
	segments := []entities.TranscriptSegment{
		{SessionID: 3, SpeakerLabel: "Speaker B", SpeakerCode: "p1", Text: "The search never finds my orders.", StartTime: 12.5, EndTime: 18.0},
	}

	quotes, err := e.Extract(context.Background(), 3, segments)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("invalid items must be dropped, got %d quotes", len(quotes))
	}
	if quotes[0].QuoteType != entities.QuoteTypeScreenSpecific || quotes[0].SessionID != 3 {
		t.Fatalf("unexpected quote: %+v", quotes[0])
	}
	if quotes[0].ID == quotes[1].ID {
		t.Fatal("quotes must get distinct ids")
	}
}

func TestExtractErrorsSurface(t *testing.T) {
	e := NewLLMExtractor(&fakeLLM{err: errors.New("timeout")}, nil)
	segments := []entities.TranscriptSegment{{Text: "hi"}}
	if _, err := e.Extract(context.Background(), 1, segments); err == nil {
		t.Fatal("request error must surface")
	}

	e = NewLLMExtractor(&fakeLLM{response: "not json"}, nil)
	if _, err := e.Extract(context.Background(), 1, segments); err == nil {
		t.Fatal("parse error must surface")
	}
}

func TestExtractEmptySession(t *testing.T) {
	e := NewLLMExtractor(&fakeLLM{response: "[]"}, nil)
	quotes, err := e.Extract(context.Background(), 1, nil)
	if err != nil || quotes != nil {
		t.Fatalf("empty session must be a no-op: %v %v", quotes, err)
	}
}

func TestGrouperParsesAssignments(t *testing.T) {
	client := &fakeLLM{response: `[
  {"group": "Login screen", "quote_indices": [0, 1]},
  {"group": "  ", "quote_indices": [2]}
]`}

	g := NewScreenClusterer(client, nil)
	quotes := quoteFixture(3, entities.QuoteTypeScreenSpecific)

	assignments, err := g.Group(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(assignments) != 1 || assignments[0].Group != "Login screen" {
		t.Fatalf("blank group names must be dropped: %+v", assignments)
	}

	if a, err := g.Group(context.Background(), nil); err != nil || a != nil {
		t.Fatalf("no quotes must be a no-op: %v %v", a, err)
	}
}
