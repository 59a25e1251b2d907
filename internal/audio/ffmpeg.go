package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Static errors for ffmpeg operations.
var (
	// ErrNoClips is returned when Assemble is called without clips.
	ErrNoClips = errors.New("audio: no clips to assemble")
	// ErrGapCount is returned when the gap count does not match the clip count.
	ErrGapCount = errors.New("audio: gap count does not match clip count")
)

// FFmpeg implements Prober and Assembler using the ffmpeg CLI.
type FFmpeg struct {
	ffmpegPath string
}

// NewFFmpeg creates a new FFmpeg processor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath}
}

var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

// Duration returns the playback duration of an audio file in seconds.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("audio: input file does not exist: %s", path)
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-i", path,
		"-hide_banner",
		"-f", "null", "-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg writes duration info to stderr and exits non-zero with a null
	// output, so the run error is ignored.
	_ = cmd.Run()

	return parseDuration(stderr.String())
}

// parseDuration extracts "Duration: HH:MM:SS.cc" from ffmpeg stderr output.
func parseDuration(output string) (float64, error) {
	matches := durationRe.FindStringSubmatch(output)
	if len(matches) < 5 {
		return 0, fmt.Errorf("audio: could not parse duration from ffmpeg output: %s", output)
	}

	hours, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	frac, _ := strconv.ParseFloat(matches[4], 64)

	// The fractional part varies in precision across ffmpeg builds.
	divisor := 1.0
	for i := 0; i < len(matches[4]); i++ {
		divisor *= 10
	}

	return hours*3600 + minutes*60 + seconds + frac/divisor, nil
}

// Assemble joins clips in order into a single MP3, generating silence
// segments for the requested gaps and concatenating everything with the
// concat demuxer.
func (f *FFmpeg) Assemble(ctx context.Context, clipPaths []string, gapsMs []int, outputPath string) error {
	if len(clipPaths) == 0 {
		return ErrNoClips
	}
	if len(gapsMs) != len(clipPaths) {
		return ErrGapCount
	}

	workDir, err := os.MkdirTemp(filepath.Dir(outputPath), "assemble_*")
	if err != nil {
		return fmt.Errorf("audio: create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	// Ordered concat entries: silence before each clip except the first,
	// then the clip itself.
	var entries []string
	for i, clip := range clipPaths {
		if i > 0 && gapsMs[i] > 0 {
			silencePath := filepath.Join(workDir, fmt.Sprintf("silence_%03d.mp3", i))
			if err := f.generateSilence(ctx, gapsMs[i], silencePath); err != nil {
				return fmt.Errorf("audio: generate silence %d: %w", i, err)
			}
			entries = append(entries, silencePath)
		}
		entries = append(entries, clip)
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, entries); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-acodec", "libmp3lame",
		"-q:a", "4",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio: concat failed: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// generateSilence writes an MP3 file containing durationMs of silence.
func (f *FFmpeg) generateSilence(ctx context.Context, durationMs int, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", fmt.Sprintf("%.3f", float64(durationMs)/1000.0),
		"-acodec", "libmp3lame",
		"-q:a", "9",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// writeConcatList writes a concat demuxer file listing entries in order.
// Single quotes in paths are escaped per the demuxer's quoting rules.
func writeConcatList(path string, entries []string) error {
	var b strings.Builder
	for _, entry := range entries {
		escaped := strings.ReplaceAll(entry, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("audio: write concat list: %w", err)
	}
	return nil
}

// Verify interface implementations at compile time.
var (
	_ Prober    = (*FFmpeg)(nil)
	_ Assembler = (*FFmpeg)(nil)
)
