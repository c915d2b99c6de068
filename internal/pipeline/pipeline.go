package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/recap/internal/config"
	"github.com/forPelevin/recap/internal/domain/countries"
	"github.com/forPelevin/recap/internal/domain/filtergraph"
	"github.com/forPelevin/recap/internal/entries"
	"github.com/forPelevin/recap/internal/ledger"
	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/ports"
	"github.com/forPelevin/recap/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/recap/internal/ports/adapters/inkscape"
	"github.com/forPelevin/recap/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/recap/internal/types"
	"github.com/forPelevin/recap/internal/usecase"
	"github.com/forPelevin/recap/internal/workpool"
)

// ManifestName is the run manifest written next to the recaps.
const ManifestName = "recaps.json"

const lockName = ".recap.lock"

// ErrLocked is returned when another run holds the workspace.
var ErrLocked = errors.New("workspace is locked by another run")

type Options struct {
	Input string
	// Cleanup removes cached clips and concat manifests after a run with no
	// failures.
	Cleanup bool
	Log     *slog.Logger
}

type Summary struct {
	RunID    string
	Manifest string
	Result   usecase.Result
}

// Run builds every recap described by the entries file in opts.Input.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Summary, error) {
	log := logging.NewComponentLogger(opts.Log, "pipeline")
	var sum Summary

	input, err := filepath.Abs(opts.Input)
	if err != nil {
		return sum, err
	}
	es, err := entries.Load(input)
	if err != nil {
		return sum, fmt.Errorf("load entries: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return sum, err
	}

	lock := flock.New(filepath.Join(cfg.Paths.TmpDir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return sum, fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return sum, fmt.Errorf("%w: %s", ErrLocked, cfg.Paths.TmpDir)
	}
	defer func() { _ = lock.Unlock() }()

	sum.RunID = uuid.NewString()
	log = log.With(slog.String(logging.FieldRunID, sum.RunID))
	log.Info("starting run", slog.String("input", input), slog.Int("entries", len(es)))

	var store *ledger.Store
	if cfg.Paths.LedgerPath != "" {
		store, err = ledger.Open(ctx, cfg.Paths.LedgerPath)
		if err != nil {
			return sum, err
		}
		defer store.Close()
		if err := store.StartRun(ctx, sum.RunID, input); err != nil {
			return sum, fmt.Errorf("ledger: %w", err)
		}
	}

	uc := usecase.New(buildDeps(cfg, store, opts.Log), settings(cfg))
	res, runErr := uc.Run(ctx, usecase.Input{
		RunID:    sum.RunID,
		Entries:  es,
		Variants: variants(cfg),
		Workers:  workpool.Size(cfg.Workers.Parallel, cfg.Workers.Reserve),
	})
	sum.Result = res

	status := ledger.RunDone
	switch {
	case runErr != nil:
		status = ledger.RunFailed
	case len(res.Failures) > 0:
		status = ledger.RunPartial
	}
	if store != nil {
		if err := store.FinishRun(context.WithoutCancel(ctx), sum.RunID, status, len(res.Outputs), len(res.Failures)); err != nil {
			log.Warn("ledger finish failed", slog.Any("error", err))
		}
	}
	if runErr != nil {
		return sum, runErr
	}

	m := buildManifest(sum.RunID, input, res)
	sum.Manifest = filepath.Join(cfg.Paths.OutputDir, ManifestName)
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return sum, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(sum.Manifest, b, 0o644); err != nil {
		return sum, err
	}
	log.Info("manifest written", slog.Int("recaps", len(m.Recaps)), slog.String(logging.FieldPath, sum.Manifest))

	if opts.Cleanup && len(res.Failures) == 0 {
		if err := cleanup(cfg.Paths.TmpDir); err != nil {
			log.Warn("cleanup failed", slog.Any("error", err))
		} else {
			log.Info("workspace cleaned", slog.String(logging.FieldPath, cfg.Paths.TmpDir))
		}
	}
	return sum, nil
}

func buildDeps(cfg *config.Config, store *ledger.Store, log *slog.Logger) usecase.Deps {
	v := ffmpeg.New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
	d := usecase.Deps{
		Transcoder: v,
		Prober:     v,
		Rasterizer: inkscape.New(cfg.Tools.Inkscape),
		Names:      countries.New(nil),
		Log:        log,
	}
	if cfg.Downloads.Enabled {
		d.Downloader = ytdlp.New(cfg.Tools.YtDlp, cfg.Tools.FFmpeg, cfg.Downloads.AllowedHosts)
	}
	if store != nil {
		d.Recorder = store
	}
	return d
}

func settings(cfg *config.Config) usecase.Settings {
	return usecase.Settings{
		Layout: usecase.Layout{
			TmpDir:    cfg.Paths.TmpDir,
			OutputDir: cfg.Paths.OutputDir,
			VideosDir: cfg.Paths.VideosDir,
			CardsDir:  cfg.Paths.CardsDir,
		},
		Width:        cfg.Video.Width,
		Height:       cfg.Video.Height,
		FPS:          cfg.Video.FPS,
		Fade:         time.Duration(cfg.Video.FadeSeconds * float64(time.Second)),
		OverlayScale: cfg.Video.OverlayScale,
		CRF:          cfg.Video.CRF,
		Preset:       cfg.Video.Preset,
		AudioKbps:    cfg.Audio.BitrateKbps,
		Loudness: filtergraph.Loudness{
			IntegratedLUFS: cfg.Audio.IntegratedLUFS,
			TruePeakDB:     cfg.Audio.TruePeakDB,
			LRA:            cfg.Audio.LRA,
		},
	}
}

func variants(cfg *config.Config) []types.Variant {
	var out []types.Variant
	if cfg.Variants.Straight {
		out = append(out, types.Straight)
	}
	if cfg.Variants.Reversed {
		out = append(out, types.Reversed)
	}
	return out
}

func buildManifest(runID, input string, res usecase.Result) types.Manifest {
	m := types.Manifest{RunID: runID, Input: input, Recaps: []types.ManifestRecap{}}
	for _, r := range res.Outputs {
		m.Recaps = append(m.Recaps, types.ManifestRecap{
			Show:        r.Key.ShowID,
			Variant:     r.Key.Variant.String(),
			Title:       r.Title,
			File:        r.Path,
			DurationSec: r.Duration.Seconds(),
			Chapters:    r.Chapters,
			Clips:       r.Clips,
		})
	}
	for _, f := range res.Failures {
		m.Failures = append(m.Failures, types.ManifestFailure{
			Subject: f.Subject,
			Variant: f.Variant.String(),
			Stage:   f.Stage,
			Error:   f.Err.Error(),
		})
	}
	return m
}

// cleanup drops cached clips and concat inputs. The ledger and lock file
// stay in place.
func cleanup(tmpDir string) error {
	var errs []error
	for _, dir := range []string{"clips", "recaps"} {
		if err := os.RemoveAll(filepath.Join(tmpDir, dir)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ensure adapters implement ports
var _ ports.Transcoder = (*ffmpeg.Adapter)(nil)
var _ ports.Prober = (*ffmpeg.Adapter)(nil)
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
var _ ports.Rasterizer = (*inkscape.Adapter)(nil)
var _ ports.Recorder = (*ledger.Store)(nil)
