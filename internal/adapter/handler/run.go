package handler

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/insightloop/interview-insights/errors"
	dto "github.com/insightloop/interview-insights/internal/adapter/dto/run"
	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/internal/domain/repositories"
	"github.com/insightloop/interview-insights/internal/usecase/pipeline"
	"github.com/insightloop/interview-insights/pkg/validator"
)

// Runs exposes resolution runs over HTTP. Triggering a run is asynchronous:
// the pipeline can take minutes per study, so POST acknowledges with 202 and
// the result is read back through the GET endpoints.
type Runs struct {
	pipeline   pipeline.Service
	runs       repositories.RunRepository
	sessions   repositories.SessionRepository
	speakers   repositories.SpeakerRepository
	quotes     repositories.QuoteRepository
	placements repositories.PlacementRepository
	validator  *validator.CustomValidator
	logger     *zap.Logger
}

// NewRuns creates the runs handler.
func NewRuns(
	pipelineSvc pipeline.Service,
	runs repositories.RunRepository,
	sessions repositories.SessionRepository,
	speakers repositories.SpeakerRepository,
	quotes repositories.QuoteRepository,
	placements repositories.PlacementRepository,
	logger *zap.Logger,
) *Runs {
	return &Runs{
		pipeline:   pipelineSvc,
		runs:       runs,
		sessions:   sessions,
		speakers:   speakers,
		quotes:     quotes,
		placements: placements,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Create triggers a run over a study folder.
// POST /v1/runs
func (h *Runs) Create(c echo.Context) error {
	var req dto.CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	if info, err := os.Stat(req.StudyPath); err != nil || !info.IsDir() {
		return HandleError(h.logger, c, apperrors.ErrStudyDirInvalid(req.StudyPath))
	}
	if live, err := h.runs.FindLiveByStudyPath(c.Request().Context(), req.StudyPath); err != nil {
		return HandleError(h.logger, c, err)
	} else if live != nil {
		return HandleError(h.logger, c, apperrors.ErrRunAlreadyLive(req.StudyPath))
	}

	// The request context dies with the response; the run gets its own.
	go func(studyPath string) {
		if _, err := h.pipeline.Run(context.Background(), studyPath); err != nil {
			h.logger.Error("triggered run failed",
				zap.String("study_path", studyPath),
				zap.Error(err),
			)
		}
	}(req.StudyPath)

	return HandleAccepted(h.logger, c, dto.AcceptedResponse{
		StudyPath: req.StudyPath,
		Status:    string(entities.RunStatusPending),
	})
}

// List returns runs, newest first.
// GET /v1/runs
func (h *Runs) List(c echo.Context) error {
	var req dto.ListRunsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	req.Normalize()

	runs, err := h.runs.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.FromRun(r))
	}
	return HandleSuccess(h.logger, c, out)
}

// Get returns one run.
// GET /v1/runs/:id
func (h *Runs) Get(c echo.Context) error {
	run, err := h.findRun(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.FromRun(run))
}

// Sessions returns a run's resolved sessions.
// GET /v1/runs/:id/sessions
func (h *Runs) Sessions(c echo.Context) error {
	run, err := h.findRun(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	records, err := h.sessions.FindByRunID(c.Request().Context(), run.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]dto.SessionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.FromSessionRecord(rec))
	}
	return HandleSuccess(h.logger, c, out)
}

// Speakers returns a run's resolved speakers.
// GET /v1/runs/:id/speakers
func (h *Runs) Speakers(c echo.Context) error {
	run, err := h.findRun(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	speakers, err := h.speakers.FindByRunID(c.Request().Context(), run.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]dto.SpeakerResponse, 0, len(speakers))
	for _, s := range speakers {
		out = append(out, dto.FromSpeaker(s))
	}
	return HandleSuccess(h.logger, c, out)
}

// Quotes returns a run's extracted quotes.
// GET /v1/runs/:id/quotes
func (h *Runs) Quotes(c echo.Context) error {
	run, err := h.findRun(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	quotes, err := h.quotes.FindByRunID(c.Request().Context(), run.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, quotes)
}

// Placements returns a run's exclusive quote placements.
// GET /v1/runs/:id/placements
func (h *Runs) Placements(c echo.Context) error {
	run, err := h.findRun(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	placements, err := h.placements.FindByRunID(c.Request().Context(), run.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]dto.PlacementResponse, 0, len(placements))
	for _, p := range placements {
		out = append(out, dto.FromPlacement(p))
	}
	return HandleSuccess(h.logger, c, out)
}

func (h *Runs) findRun(c echo.Context) (*entities.ResolutionRun, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperrors.ErrInvalidArgument("invalid run id")
	}
	run, err := h.runs.FindByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperrors.ErrRunNotFound(id.String())
	}
	return run, nil
}
