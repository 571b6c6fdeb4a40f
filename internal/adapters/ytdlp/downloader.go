package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/ports"
)

// audioCodec is the fixed codec every acquisition transcodes to.
const audioCodec = "mp3"

// Downloader implements ports.AudioDownloader using yt-dlp
type Downloader struct {
	binPath    string
	ffmpegPath string
	paths      config.PathsConfig
}

// NewDownloader creates a new yt-dlp downloader. Binary paths from the
// tool config take precedence over the bundled and system locations.
func NewDownloader(paths config.PathsConfig) *Downloader {
	return &Downloader{paths: paths}
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "yt-dlp.exe"
	}
	return "yt-dlp"
}

func ffmpegBinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func (d *Downloader) findBinary() string {
	// Explicit config override wins
	if d.paths.YtDlp != "" {
		if _, err := os.Stat(d.paths.YtDlp); err == nil {
			return d.paths.YtDlp
		}
	}

	// Check bundled location
	bundled := filepath.Join(config.BinDir(), binaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}

	// Check system PATH
	if path, err := exec.LookPath(binaryName()); err == nil {
		return path
	}

	return ""
}

func (d *Downloader) GetBinaryPath() string {
	if d.binPath != "" {
		return d.binPath
	}
	d.binPath = d.findBinary()
	return d.binPath
}

func (d *Downloader) IsAvailable() bool {
	return d.GetBinaryPath() != ""
}

// DownloadAudio extracts the best-available audio from url, transcodes it
// to mp3 and writes it into destDir using the media's own title as the
// filename. Failure causes are classified into the domain's acquisition
// error kinds rather than collapsed into one.
func (d *Downloader) DownloadAudio(ctx context.Context, url string, destDir string) (*ports.DownloadResult, error) {
	binPath := d.GetBinaryPath()
	if binPath == "" {
		return nil, fmt.Errorf("yt-dlp not found")
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	outputTemplate := filepath.Join(destDir, "%(title)s.%(ext)s")

	args := []string{
		"--no-warnings",
		"--no-playlist",
		"--print-json",
		"-f", "m4a/bestaudio/best",
		"-x",
		"--audio-format", audioCodec,
		"-o", outputTemplate,
		url,
	}

	cmd := exec.CommandContext(ctx, binPath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, classifyFailure(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	var info struct {
		ID                 string  `json:"id"`
		Title              string  `json:"title"`
		Duration           float64 `json:"duration"`
		Ext                string  `json:"ext"`
		RequestedDownloads []struct {
			Filepath string `json:"filepath"`
		} `json:"requested_downloads"`
	}

	if err := json.Unmarshal(output, &info); err != nil {
		// Metadata parse failed; the audio may still be on disk
		if path := newestAudioFile(destDir); path != "" {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return &ports.DownloadResult{AudioPath: path, BaseName: base, Title: base}, nil
		}
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	audioPath := audioPathFromInfo(destDir, info.Title, info.RequestedDownloads)
	if _, err := os.Stat(audioPath); err != nil {
		if path := newestAudioFile(destDir); path != "" {
			audioPath = path
		} else {
			return nil, fmt.Errorf("extracted audio missing at %s: %w", audioPath, domain.ErrExtractionFailed)
		}
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return &ports.DownloadResult{
		AudioPath: audioPath,
		BaseName:  base,
		Title:     info.Title,
		Duration:  int(info.Duration),
	}, nil
}

// audioPathFromInfo resolves the post-transcode file path. The filepath
// reported by yt-dlp refers to the pre-extraction download, so the
// extension is swapped for the target codec.
func audioPathFromInfo(destDir, title string, downloads []struct {
	Filepath string `json:"filepath"`
}) string {
	if len(downloads) > 0 && downloads[0].Filepath != "" {
		reported := downloads[0].Filepath
		return strings.TrimSuffix(reported, filepath.Ext(reported)) + "." + audioCodec
	}
	return filepath.Join(destDir, title+"."+audioCodec)
}

func newestAudioFile(destDir string) string {
	matches, _ := filepath.Glob(filepath.Join(destDir, "*."+audioCodec))
	var newest string
	var newestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	return newest
}

// classifyFailure maps yt-dlp stderr to a distinct acquisition error kind
// so callers can tell a dead link from a dead network.
func classifyFailure(stderr string) error {
	lower := strings.ToLower(stderr)

	switch {
	case strings.Contains(lower, "unsupported url"),
		strings.Contains(lower, "is not a valid url"):
		return fmt.Errorf("%s: %w", firstLine(stderr), domain.ErrUnsupportedSource)
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "private video"),
		strings.Contains(lower, "404"),
		strings.Contains(lower, "this video is not available"),
		strings.Contains(lower, "members-only"):
		return fmt.Errorf("%s: %w", firstLine(stderr), domain.ErrMediaUnavailable)
	case strings.Contains(lower, "unable to download"),
		strings.Contains(lower, "getaddrinfo"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "connection re"),
		strings.Contains(lower, "network"):
		return fmt.Errorf("%s: %w", firstLine(stderr), domain.ErrNetworkFailure)
	case strings.Contains(lower, "ffmpeg"),
		strings.Contains(lower, "postprocess"):
		return fmt.Errorf("%s: %w", firstLine(stderr), domain.ErrExtractionFailed)
	}

	return fmt.Errorf("yt-dlp failed: %s: %w", firstLine(stderr), domain.ErrExtractionFailed)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func (d *Downloader) Install(ctx context.Context, progress func(downloaded, total int64)) error {
	binDir := config.BinDir()
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}

	downloadURL := d.getDownloadURL()
	destPath := filepath.Join(binDir, binaryName())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download yt-dlp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download yt-dlp: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	// Track success to clean up partial downloads on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(destPath)
		}
	}()

	total := resp.ContentLength
	var downloaded int64

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			_, writeErr := out.Write(buf[:n])
			if writeErr != nil {
				return writeErr
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	// Make executable on Unix
	if runtime.GOOS != "windows" {
		if err := os.Chmod(destPath, 0755); err != nil {
			return err
		}
	}

	success = true
	d.binPath = destPath
	return nil
}

func (d *Downloader) getDownloadURL() string {
	base := "https://github.com/yt-dlp/yt-dlp/releases/latest/download/"

	switch runtime.GOOS {
	case "windows":
		return base + "yt-dlp.exe"
	case "darwin":
		return base + "yt-dlp_macos"
	default:
		return base + "yt-dlp"
	}
}

func (d *Downloader) Update(ctx context.Context) error {
	binPath := d.GetBinaryPath()
	if binPath == "" {
		return fmt.Errorf("yt-dlp not installed")
	}

	cmd := exec.CommandContext(ctx, binPath, "-U")
	return cmd.Run()
}

func (d *Downloader) findFFmpeg() string {
	if d.paths.FFmpeg != "" {
		if _, err := os.Stat(d.paths.FFmpeg); err == nil {
			return d.paths.FFmpeg
		}
	}

	bundled := filepath.Join(config.BinDir(), ffmpegBinaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}

	if path, err := exec.LookPath(ffmpegBinaryName()); err == nil {
		return path
	}

	return ""
}

func (d *Downloader) IsFFmpegAvailable() bool {
	if d.ffmpegPath != "" {
		return true
	}
	d.ffmpegPath = d.findFFmpeg()
	return d.ffmpegPath != ""
}

func (d *Downloader) FFmpegInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "ffmpeg is required for audio extraction. Install it with: brew install ffmpeg"
	case "linux":
		return "ffmpeg is required for audio extraction. Install it with your package manager, e.g.: sudo apt install ffmpeg"
	default:
		return "ffmpeg is required for audio extraction. Download it from https://ffmpeg.org/download.html"
	}
}

// Ensure Downloader implements the interface
var _ ports.AudioDownloader = (*Downloader)(nil)
