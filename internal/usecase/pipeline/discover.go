package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/insightloop/interview-insights/errors"
	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// Discover walks a study folder and returns every recording, subtitle, and
// document file in it. Walk order is deterministic (lexical per directory),
// which fixes the first-encountered ordering the grouper builds session ids
// from.
func Discover(root string) ([]entities.InputFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, apperrors.ErrStudyDirInvalid(root)
	}

	var files []entities.InputFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, entities.NewInputFile(path, fi.ModTime()))
		return nil
	})
	if err != nil {
		return nil, apperrors.ErrStudyDirInvalid(root)
	}
	if len(files) == 0 {
		return nil, apperrors.ErrNoInputFiles(root)
	}
	return files, nil
}
