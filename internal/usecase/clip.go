package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/forPelevin/recap/internal/domain/filtergraph"
	"github.com/forPelevin/recap/internal/domain/snippet"
	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/types"
)

type ClipJob struct {
	Entry   types.Entry
	Variant types.Variant
	Source  string
	Overlay string
}

type ClipResult struct {
	Key     types.ShowKey
	Entry   types.Entry
	Path    string
	Skipped bool
}

// ProcessClip renders one entry for one variant into the clip cache. An
// existing clip is returned untouched.
func (u Usecase) ProcessClip(ctx context.Context, job ClipJob) (ClipResult, error) {
	key := types.KeyOf(job.Entry, job.Variant)
	dest := u.s.Layout.ClipPath(key)
	res := ClipResult{Key: key.Show(), Entry: job.Entry, Path: dest}
	log := u.log.With(
		slog.String(logging.FieldEntry, job.Entry.Label()),
		slog.String(logging.FieldVariant, job.Variant.String()),
	)

	if exists(dest) {
		log.Info("clip exists, skipping", slog.String(logging.FieldPath, dest))
		res.Skipped = true
		return res, nil
	}

	if err := requireFile(job.Source); err != nil {
		return res, fmt.Errorf("%s: %w: source video %s", job.Entry.Label(), types.ErrMissingInput, job.Source)
	}
	if err := requireFile(job.Overlay); err != nil {
		return res, fmt.Errorf("%s: %w: overlay %s", job.Entry.Label(), types.ErrMissingInput, job.Overlay)
	}

	win, err := snippet.Pad(job.Entry.Window(job.Variant), u.s.Fade)
	if err != nil {
		return res, fmt.Errorf("%s: %w", job.Entry.Label(), err)
	}
	graph := filtergraph.BuildClip(filtergraph.Params{
		Width:        u.s.Width,
		Height:       u.s.Height,
		FPS:          u.s.FPS,
		Duration:     win.Duration(),
		Fade:         u.s.Fade,
		OverlayScale: u.s.OverlayScale,
		Loudness:     u.s.Loudness,
	})

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return res, fmt.Errorf("create clip dir: %w", err)
	}
	tmp := tempPath(dest)
	log.Info("rendering clip",
		slog.String("window", snippet.FormatHMS(win.Start)+"-"+snippet.FormatHMS(win.End)),
		slog.String(logging.FieldPath, dest),
	)
	if err := u.d.Transcoder.Transcode(ctx, u.clipArgs(job, win, graph.String(), tmp)); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("render clip %s: %w", job.Entry.Label(), err)
	}
	if err := commit(tmp, dest); err != nil {
		return res, fmt.Errorf("commit clip %s: %w", job.Entry.Label(), err)
	}
	return res, nil
}

func (u Usecase) clipArgs(job ClipJob, win types.Window, graph, out string) []string {
	return []string{
		"-hide_banner", "-y",
		"-ss", snippet.FormatHMS(win.Start),
		"-to", snippet.FormatHMS(win.End),
		"-i", job.Source,
		"-i", job.Overlay,
		"-filter_complex", graph,
		"-map", "[" + filtergraph.VideoOut + "]",
		"-map", "[" + filtergraph.AudioOut + "]",
		"-r", strconv.Itoa(u.s.FPS),
		"-c:v", "libx264",
		"-preset", u.s.Preset,
		"-crf", strconv.Itoa(u.s.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-ac", "2",
		"-b:a", strconv.Itoa(u.s.AudioKbps) + "k",
		"-f", "mp4",
		out,
	}
}

func requireFile(path string) error {
	if path == "" {
		return os.ErrNotExist
	}
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
