package ports

import (
	"context"
)

// DownloadResult contains the result of an audio acquisition.
type DownloadResult struct {
	AudioPath string // path to the extracted audio file inside the project's audios folder
	BaseName  string // media title without extension, the asset's base filename
	Title     string // original media title as reported by the source
	Duration  int    // media duration in seconds, 0 if unknown
}

// AudioDownloader resolves a remote URL to a local audio file.
type AudioDownloader interface {
	// Download operations

	// DownloadAudio extracts best-available audio from the URL, transcodes it
	// to mp3 and writes it into destDir named after the media title.
	DownloadAudio(ctx context.Context, url string, destDir string) (*DownloadResult, error)

	// yt-dlp management

	// IsAvailable checks if yt-dlp is installed and ready.
	IsAvailable() bool

	// GetBinaryPath returns the path to the yt-dlp binary.
	GetBinaryPath() string

	// Install downloads and installs yt-dlp, reporting progress via callback.
	Install(ctx context.Context, progress func(downloaded, total int64)) error

	// Update updates yt-dlp to the latest version.
	Update(ctx context.Context) error

	// ffmpeg management

	// IsFFmpegAvailable checks if ffmpeg is installed.
	IsFFmpegAvailable() bool

	// FFmpegInstructions returns platform-specific installation instructions.
	FFmpegInstructions() string
}
