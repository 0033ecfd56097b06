package grouping

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// Service partitions a flat list of input files into sessions. Grouping
// never fails: files matching no known naming convention degrade to
// one-file sessions.
type Service interface {
	Group(files []entities.InputFile) []entities.InputSession
}

type groupingService struct {
	logger *zap.Logger
}

// NewService creates a new session grouping service
func NewService(logger *zap.Logger) Service {
	return &groupingService{logger: logger}
}

// Group runs two ordered passes over the files. Pass 1 claims files living
// inside a platform session-export directory and groups them by directory.
// Pass 2 groups the remainder by normalized stem equality. Session ids are
// assigned sequentially: pass-1 groups first in scan order, then pass-2
// groups in first-file-encountered order. That ordering is a documented
// contract, not an accident.
func (g *groupingService) Group(files []entities.InputFile) []entities.InputSession {
	type bucket struct {
		key   string
		files []entities.InputFile
	}

	var order []string
	buckets := make(map[string]*bucket)
	add := func(key string, f entities.InputFile) {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.files = append(b.files, f)
	}

	// Pass 1: directory grouping.
	var rest []entities.InputFile
	for _, f := range files {
		dir := filepath.Dir(f.Path)
		if isSessionDir(filepath.Base(dir)) {
			add("dir:"+strings.ToLower(dir), f)
			continue
		}
		rest = append(rest, f)
	}

	// Pass 2: stem normalization over everything pass 1 did not claim.
	for _, f := range rest {
		add("stem:"+normalizeStem(f.Stem), f)
	}

	sessions := make([]entities.InputSession, 0, len(order))
	for i, key := range order {
		s := entities.NewInputSession(i+1, buckets[key].files)
		sessions = append(sessions, s)
	}

	if g.logger != nil {
		g.logger.Info("session grouping completed",
			zap.Int("files", len(files)),
			zap.Int("sessions", len(sessions)),
		)
	}

	return sessions
}
