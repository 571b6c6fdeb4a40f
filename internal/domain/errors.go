package domain

import "errors"

var (
	// Project errors
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidName     = errors.New("invalid name")

	// Acquisition errors, one per failure kind so callers can tell
	// a dead link from a dead network
	ErrMediaUnavailable  = errors.New("media not found or unavailable")
	ErrNetworkFailure    = errors.New("network failure")
	ErrUnsupportedSource = errors.New("unsupported media source")
	ErrExtractionFailed  = errors.New("audio extraction failed")

	// Transcription errors
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrModelNotFound       = errors.New("model not found")

	// Index and query errors
	ErrIndexNotFound = errors.New("vector index not found")
	ErrEmptyIndex    = errors.New("vector index is empty")

	// Pipeline coordination
	ErrPipelineBusy = errors.New("another pipeline run is active for this project")

	// Dependency errors
	ErrFFmpegNotFound = errors.New("ffmpeg not found")
)
