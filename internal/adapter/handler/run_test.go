package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

type stubRuns struct {
	byID map[uuid.UUID]*entities.ResolutionRun
	live *entities.ResolutionRun
}

func (s *stubRuns) Create(ctx context.Context, run *entities.ResolutionRun) error { return nil }

func (s *stubRuns) FindByID(ctx context.Context, id uuid.UUID) (*entities.ResolutionRun, error) {
	return s.byID[id], nil
}

func (s *stubRuns) FindLiveByStudyPath(ctx context.Context, studyPath string) (*entities.ResolutionRun, error) {
	return s.live, nil
}

func (s *stubRuns) List(ctx context.Context, limit, offset int) ([]*entities.ResolutionRun, error) {
	var out []*entities.ResolutionRun
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRuns) MarkStarted(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubRuns) MarkCompleted(ctx context.Context, id uuid.UUID, sessionCount, participantCounter int) error {
	return nil
}
func (s *stubRuns) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error { return nil }

type stubSessions struct{ records []*entities.SessionRecord }

func (s *stubSessions) Create(ctx context.Context, record *entities.SessionRecord) error { return nil }
func (s *stubSessions) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.SessionRecord, error) {
	return s.records, nil
}
func (s *stubSessions) FindByRunAndSession(ctx context.Context, runID uuid.UUID, sessionID int) (*entities.SessionRecord, error) {
	return nil, nil
}

type stubSpeakers struct{}

func (s *stubSpeakers) CreateBatch(ctx context.Context, speakers []entities.Speaker) error {
	return nil
}
func (s *stubSpeakers) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Speaker, error) {
	return nil, nil
}

type stubQuotes struct{}

func (s *stubQuotes) CreateBatch(ctx context.Context, quotes []entities.Quote) error { return nil }
func (s *stubQuotes) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.Quote, error) {
	return nil, nil
}

type stubPlacements struct{ placements []*entities.FinalPlacement }

func (s *stubPlacements) CreateBatch(ctx context.Context, placements []entities.FinalPlacement) error {
	return nil
}
func (s *stubPlacements) FindByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.FinalPlacement, error) {
	return s.placements, nil
}

type stubPipeline struct {
	started chan string
}

func (s *stubPipeline) Run(ctx context.Context, studyPath string) (*entities.ResolutionRun, error) {
	s.started <- studyPath
	return entities.NewResolutionRun(studyPath), nil
}

func newTestHandler(runs *stubRuns, sessions *stubSessions, placements *stubPlacements, pipe *stubPipeline) *Runs {
	if runs == nil {
		runs = &stubRuns{byID: map[uuid.UUID]*entities.ResolutionRun{}}
	}
	if sessions == nil {
		sessions = &stubSessions{}
	}
	if placements == nil {
		placements = &stubPlacements{}
	}
	if pipe == nil {
		pipe = &stubPipeline{started: make(chan string, 1)}
	}
	return NewRuns(pipe, runs, sessions, &stubSpeakers{}, &stubQuotes{}, placements, zap.NewNop())
}

func doRequest(h echo.HandlerFunc, req *http.Request, pathParams map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateAcceptsAndStartsRun(t *testing.T) {
	dir := t.TempDir()
	pipe := &stubPipeline{started: make(chan string, 1)}
	h := newTestHandler(nil, nil, nil, pipe)

	body := `{"study_path": "` + dir + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(h.Create, req, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case got := <-pipe.started:
		if got != dir {
			t.Fatalf("pipeline started with %q, want %q", got, dir)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline never started")
	}
}

func TestCreateRejectsMissingStudyPath(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(h.Create, req, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRejectsLiveRun(t *testing.T) {
	dir := t.TempDir()
	runs := &stubRuns{
		byID: map[uuid.UUID]*entities.ResolutionRun{},
		live: entities.NewResolutionRun(dir),
	}
	h := newTestHandler(runs, nil, nil, nil)

	body := `{"study_path": "` + dir + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(h.Create, req, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetRun(t *testing.T) {
	run := entities.NewResolutionRun("/studies/a")
	run.Status = entities.RunStatusCompleted
	run.SessionCount = 2
	runs := &stubRuns{byID: map[uuid.UUID]*entities.ResolutionRun{run.ID: run}}
	h := newTestHandler(runs, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID.String(), nil)
	rec := doRequest(h.Get, req, map[string]string{"id": run.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ID           string `json:"id"`
			Status       string `json:"status"`
			SessionCount int    `json:"session_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data.ID != run.ID.String() || resp.Data.Status != "completed" || resp.Data.SessionCount != 2 {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+id, nil)
	rec := doRequest(h.Get, req, map[string]string{"id": id})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetRunBadID(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/not-a-uuid", nil)
	rec := doRequest(h.Get, req, map[string]string{"id": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlacementsSerialization(t *testing.T) {
	run := entities.NewResolutionRun("/studies/a")
	runs := &stubRuns{byID: map[uuid.UUID]*entities.ResolutionRun{run.ID: run}}
	placements := &stubPlacements{placements: []*entities.FinalPlacement{
		{
			ID:          uuid.New(),
			QuoteID:     uuid.New(),
			Group:       entities.FallbackGroup,
			Kind:        entities.PlacementKindTheme,
			Fallback:    true,
			DemotedFrom: []string{"Habits"},
		},
	}}
	h := newTestHandler(runs, nil, placements, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID.String()+"/placements", nil)
	rec := doRequest(h.Placements, req, map[string]string{"id": run.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []struct {
			Group       string   `json:"group"`
			Kind        string   `json:"kind"`
			Fallback    bool     `json:"fallback"`
			DemotedFrom []string `json:"demoted_from"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Group != entities.FallbackGroup ||
		resp.Data[0].Kind != "theme" || !resp.Data[0].Fallback ||
		len(resp.Data[0].DemotedFrom) != 1 {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}
