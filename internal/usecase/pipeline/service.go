package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/insightloop/interview-insights/errors"
	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/internal/domain/repositories"
	"github.com/insightloop/interview-insights/internal/usecase/grouping"
	"github.com/insightloop/interview-insights/internal/usecase/quotes"
	"github.com/insightloop/interview-insights/internal/usecase/speaker"
	"github.com/insightloop/interview-insights/pkg/transcribe"
)

// Repos bundles the persistence collaborators of a run.
type Repos struct {
	Runs       repositories.RunRepository
	Sessions   repositories.SessionRepository
	Speakers   repositories.SpeakerRepository
	Quotes     repositories.QuoteRepository
	Placements repositories.PlacementRepository
}

// Archiver stores a copy of a run's input files in object storage.
// Archiving is best-effort; failures never fail a run.
type Archiver interface {
	ArchiveFile(ctx context.Context, runID uuid.UUID, path string) error
}

// Service runs the full resolution pipeline over a study folder.
type Service interface {
	// Run discovers, groups, transcribes, resolves, and partitions one
	// study folder, persisting everything under a new resolution run.
	Run(ctx context.Context, studyPath string) (*entities.ResolutionRun, error)
}

// Options configures the orchestrator.
type Options struct {
	// StageConcurrency bounds concurrent external calls within one stage.
	// Stages themselves are strictly sequential.
	StageConcurrency int
}

type pipelineService struct {
	grouper   grouping.Service
	resolver  speaker.Service
	media     transcribe.Transcriber // nil disables speech-to-text
	subtitles transcribe.Transcriber
	extractor quotes.Extractor
	screens   quotes.Grouper
	themes    quotes.Grouper
	repos     Repos
	archiver  Archiver // nil disables archiving
	opts      Options
	logger    *zap.Logger
}

// NewService wires the pipeline orchestrator.
func NewService(
	grouper grouping.Service,
	resolver speaker.Service,
	media, subtitles transcribe.Transcriber,
	extractor quotes.Extractor,
	screens, themes quotes.Grouper,
	repos Repos,
	archiver Archiver,
	opts Options,
	logger *zap.Logger,
) Service {
	if opts.StageConcurrency <= 0 {
		opts.StageConcurrency = 3
	}
	return &pipelineService{
		grouper:   grouper,
		resolver:  resolver,
		media:     media,
		subtitles: subtitles,
		extractor: extractor,
		screens:   screens,
		themes:    themes,
		repos:     repos,
		archiver:  archiver,
		opts:      opts,
		logger:    logger,
	}
}

// sessionState carries one session through the stages.
type sessionState struct {
	session  entities.InputSession
	segments []entities.TranscriptSegment
	codes    map[string]string
	quotes   []entities.Quote
	degraded bool
}

func (s *pipelineService) Run(ctx context.Context, studyPath string) (*entities.ResolutionRun, error) {
	if live, err := s.repos.Runs.FindLiveByStudyPath(ctx, studyPath); err != nil {
		return nil, err
	} else if live != nil {
		return nil, apperrors.ErrRunAlreadyLive(studyPath)
	}

	run := entities.NewResolutionRun(studyPath)
	if err := s.repos.Runs.Create(ctx, run); err != nil {
		return nil, err
	}
	if err := s.repos.Runs.MarkStarted(ctx, run.ID); err != nil {
		return nil, err
	}

	counter, sessionCount, err := s.process(ctx, run)
	if err != nil {
		s.logger.Error("run failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		if markErr := s.repos.Runs.MarkFailed(ctx, run.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to record run failure", zap.Error(markErr))
		}
		return run, err
	}

	if err := s.repos.Runs.MarkCompleted(ctx, run.ID, sessionCount, counter); err != nil {
		return run, err
	}
	s.logger.Info("run completed",
		zap.String("run_id", run.ID.String()),
		zap.Int("sessions", sessionCount),
		zap.Int("next_participant", counter),
	)
	return run, nil
}

func (s *pipelineService) process(ctx context.Context, run *entities.ResolutionRun) (counter, sessionCount int, err error) {
	files, err := Discover(run.StudyPath)
	if err != nil {
		return 0, 0, err
	}

	sessions := s.grouper.Group(files)
	states := make([]*sessionState, len(sessions))
	for i, sess := range sessions {
		states[i] = &sessionState{session: sess}
	}

	// Stage 1: transcript acquisition, concurrent per session. A failed
	// session degrades to empty segments; siblings are unaffected.
	s.forEachSession(ctx, states, func(ctx context.Context, st *sessionState) {
		segments, err := s.transcribeSession(ctx, st.session)
		if err != nil {
			s.logger.Warn("session transcript unavailable",
				zap.Int("session_id", st.session.SessionID),
				zap.Error(err),
			)
			st.degraded = true
			return
		}
		st.segments = segments
	})

	// Stage 2: speaker resolution, strictly sequential. The participant
	// counter is threaded by value between calls, so cross-session
	// numbering never races.
	counter = run.ParticipantCounter
	for _, st := range states {
		var speakers []entities.Speaker
		st.codes, speakers, counter = s.resolver.Resolve(ctx, st.session.SessionID, st.segments, counter)

		for i := range speakers {
			speakers[i].RunID = run.ID
		}
		if err := s.repos.Speakers.CreateBatch(ctx, speakers); err != nil {
			return 0, 0, err
		}
	}

	// Stage 3: quote extraction, concurrent per session.
	s.forEachSession(ctx, states, func(ctx context.Context, st *sessionState) {
		if len(st.segments) == 0 {
			return
		}
		extracted, err := s.extractor.Extract(ctx, st.session.SessionID, st.segments)
		if err != nil {
			s.logger.Warn("quote extraction failed",
				zap.Int("session_id", st.session.SessionID),
				zap.Error(err),
			)
			st.degraded = true
			return
		}
		st.quotes = extracted
	})

	for _, st := range states {
		record := &entities.SessionRecord{
			ID:                    uuid.New(),
			RunID:                 run.ID,
			SessionID:             st.session.SessionID,
			HasExistingTranscript: st.session.HasExistingTranscript,
			Files:                 datatypes.NewJSONSlice(st.session.Files),
			Segments:              datatypes.NewJSONSlice(st.segments),
			LabelCodes:            entities.NewLabelCodes(st.codes),
			Degraded:              st.degraded,
		}
		if err := s.repos.Sessions.Create(ctx, record); err != nil {
			return 0, 0, err
		}
	}

	// Stage 4: clustering, grouping, and the partition safety net over the
	// whole run's quotes.
	var allQuotes []entities.Quote
	for _, st := range states {
		allQuotes = append(allQuotes, st.quotes...)
	}
	sort.SliceStable(allQuotes, func(i, j int) bool {
		if allQuotes[i].SessionID != allQuotes[j].SessionID {
			return allQuotes[i].SessionID < allQuotes[j].SessionID
		}
		return allQuotes[i].StartTime < allQuotes[j].StartTime
	})
	for i := range allQuotes {
		allQuotes[i].RunID = run.ID
	}

	placements := s.partitionQuotes(ctx, allQuotes)
	groupByQuote := make(map[uuid.UUID]string, len(placements))
	for i := range placements {
		placements[i].RunID = run.ID
		groupByQuote[placements[i].QuoteID] = placements[i].Group
	}
	for i := range allQuotes {
		allQuotes[i].AssignedGroup = groupByQuote[allQuotes[i].ID]
	}

	if err := s.repos.Quotes.CreateBatch(ctx, allQuotes); err != nil {
		return 0, 0, err
	}
	if err := s.repos.Placements.CreateBatch(ctx, placements); err != nil {
		return 0, 0, err
	}

	s.archiveInputs(ctx, run.ID, files)

	return counter, len(sessions), nil
}

// transcribeSession prefers an existing subtitle or document transcript and
// falls back to speech-to-text on the primary media file.
func (s *pipelineService) transcribeSession(ctx context.Context, session entities.InputSession) ([]entities.TranscriptSegment, error) {
	if session.HasExistingTranscript {
		return s.subtitles.Transcribe(ctx, session)
	}
	if s.media == nil {
		return nil, apperrors.ErrTranscriptionFailed(nil)
	}
	return s.media.Transcribe(ctx, session)
}

// partitionQuotes sends each quote-type subset to its collaborator and runs
// the exactly-once safety net over the responses. A collaborator failure
// yields an empty assignment, which the safety net turns into fallback
// placements rather than dropped quotes.
func (s *pipelineService) partitionQuotes(ctx context.Context, allQuotes []entities.Quote) []entities.FinalPlacement {
	var screenQuotes, themeQuotes []entities.Quote
	for _, q := range allQuotes {
		if q.QuoteType == entities.QuoteTypeScreenSpecific {
			screenQuotes = append(screenQuotes, q)
		} else {
			themeQuotes = append(themeQuotes, q)
		}
	}

	screenAssign, err := s.screens.Group(ctx, screenQuotes)
	if err != nil {
		s.logger.Warn("screen clustering failed, quotes fall back", zap.Error(err))
		screenAssign = nil
	}
	themeAssign, err := s.themes.Group(ctx, themeQuotes)
	if err != nil {
		s.logger.Warn("theme grouping failed, quotes fall back", zap.Error(err))
		themeAssign = nil
	}

	return quotes.Partition(allQuotes, screenAssign, themeAssign, s.logger)
}

// forEachSession runs fn over every session with the stage's concurrency
// bound and waits for all of them. Each stage owns its own semaphore.
func (s *pipelineService) forEachSession(ctx context.Context, states []*sessionState, fn func(context.Context, *sessionState)) {
	sem := make(chan struct{}, s.opts.StageConcurrency)
	var wg sync.WaitGroup
	for _, st := range states {
		wg.Add(1)
		sem <- struct{}{}
		go func(st *sessionState) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, st)
		}(st)
	}
	wg.Wait()
}

func (s *pipelineService) archiveInputs(ctx context.Context, runID uuid.UUID, files []entities.InputFile) {
	if s.archiver == nil {
		return
	}
	for _, f := range files {
		if err := s.archiver.ArchiveFile(ctx, runID, f.Path); err != nil {
			s.logger.Warn("failed to archive input file",
				zap.String("path", f.Path),
				zap.Error(err),
			)
		}
	}
}
