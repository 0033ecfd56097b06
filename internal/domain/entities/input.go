package entities

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType classifies a discovered input file
type FileType string

const (
	FileTypeAudio    FileType = "audio"
	FileTypeVideo    FileType = "video"
	FileTypeSubtitle FileType = "subtitle"
	FileTypeDocument FileType = "document"
)

var extToType = map[string]FileType{
	".mp3":  FileTypeAudio,
	".wav":  FileTypeAudio,
	".m4a":  FileTypeAudio,
	".aac":  FileTypeAudio,
	".ogg":  FileTypeAudio,
	".flac": FileTypeAudio,
	".mp4":  FileTypeVideo,
	".mov":  FileTypeVideo,
	".mkv":  FileTypeVideo,
	".webm": FileTypeVideo,
	".avi":  FileTypeVideo,
	".vtt":  FileTypeSubtitle,
	".srt":  FileTypeSubtitle,
	".sbv":  FileTypeSubtitle,
	".txt":  FileTypeDocument,
	".docx": FileTypeDocument,
	".rtf":  FileTypeDocument,
}

// DetectFileType maps a filename extension to a FileType.
// Unknown extensions are treated as documents so nothing is dropped at intake.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extToType[ext]; ok {
		return t
	}
	return FileTypeDocument
}

// InputFile is a single discovered file. Immutable once discovered.
type InputFile struct {
	Path      string    `json:"path"`
	Stem      string    `json:"stem"` // lowercase filename without extension
	Type      FileType  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Duration  float64   `json:"duration_seconds,omitempty"`
}

// NewInputFile builds an InputFile with the stem normalized to lowercase.
func NewInputFile(path string, createdAt time.Time) InputFile {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return InputFile{
		Path:      path,
		Stem:      strings.ToLower(stem),
		Type:      DetectFileType(path),
		CreatedAt: createdAt,
	}
}

// IsTranscript reports whether the file already carries transcript text,
// meaning downstream extraction must skip speech-to-text.
func (f InputFile) IsTranscript() bool {
	return f.Type == FileTypeSubtitle || f.Type == FileTypeDocument
}

// InputSession is one interview occurrence, possibly spanning several files.
// Created by the session grouper and never mutated afterward.
type InputSession struct {
	SessionID             int         `json:"session_id"`
	Files                 []InputFile `json:"files"`
	HasExistingTranscript bool        `json:"has_existing_transcript"`
}

// NewInputSession assembles a session from its member files, deriving the
// existing-transcript flag from the member types.
func NewInputSession(id int, files []InputFile) InputSession {
	s := InputSession{SessionID: id, Files: files}
	for _, f := range files {
		if f.IsTranscript() {
			s.HasExistingTranscript = true
			break
		}
	}
	return s
}

// PrimaryMedia returns the first audio or video member, if any. Used to pick
// the file handed to speech-to-text.
func (s InputSession) PrimaryMedia() (InputFile, bool) {
	for _, f := range s.Files {
		if f.Type == FileTypeAudio || f.Type == FileTypeVideo {
			return f, true
		}
	}
	return InputFile{}, false
}

// PrimaryTranscript returns the first subtitle or document member, if any.
func (s InputSession) PrimaryTranscript() (InputFile, bool) {
	for _, f := range s.Files {
		if f.IsTranscript() {
			return f, true
		}
	}
	return InputFile{}, false
}
