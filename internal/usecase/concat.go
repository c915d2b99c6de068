package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/recap/internal/domain/chapters"
	"github.com/forPelevin/recap/internal/logging"
)

type ConcatJob struct {
	// Clips are concatenated in exactly this order.
	Clips        []string
	Chapters     chapters.Document
	ChaptersPath string
	ManifestPath string
	Destination  string
	Title        string
}

type ConcatResult struct {
	Path    string
	Skipped bool
}

// Concat stream-copies clips into one chaptered recap.
func (u Usecase) Concat(ctx context.Context, job ConcatJob) (ConcatResult, error) {
	res := ConcatResult{Path: job.Destination}
	log := u.log.With(slog.String(logging.FieldPath, job.Destination))

	if len(job.Clips) == 0 {
		return res, fmt.Errorf("concat %s: no clips", job.Destination)
	}
	manifest, err := renderManifest(job.Clips)
	if err != nil {
		return res, err
	}
	if err := writeFile(job.ManifestPath, manifest); err != nil {
		return res, fmt.Errorf("write concat manifest: %w", err)
	}

	if exists(job.Destination) {
		log.Info("recap exists, skipping")
		res.Skipped = true
		return res, nil
	}

	if err := writeFile(job.ChaptersPath, job.Chapters.Render()); err != nil {
		return res, fmt.Errorf("write chapters: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	tmp := tempPath(job.Destination)
	log.Info("concatenating recap", slog.Int("clips", len(job.Clips)), slog.String("title", job.Title))
	if err := u.d.Transcoder.Transcode(ctx, concatArgs(job, tmp)); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("concat %s: %w", filepath.Base(job.Destination), err)
	}
	if err := commit(tmp, job.Destination); err != nil {
		return res, fmt.Errorf("commit recap: %w", err)
	}
	return res, nil
}

func concatArgs(job ConcatJob, out string) []string {
	return []string{
		"-hide_banner", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", job.ManifestPath,
		"-i", job.ChaptersPath,
		"-map", "0",
		"-map_metadata", "1",
		"-map_chapters", "1",
		"-metadata", "title=" + job.Title,
		"-c", "copy",
		"-movflags", "+faststart",
		"-f", "mp4",
		out,
	}
}

// renderManifest lists clips for the concat demuxer, one absolute path per
// line with single quotes escaped.
func renderManifest(clips []string) (string, error) {
	var b strings.Builder
	for _, c := range clips {
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", fmt.Errorf("resolve clip path %s: %w", c, err)
		}
		b.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}
	return b.String(), nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
