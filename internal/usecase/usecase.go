package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/forPelevin/recap/internal/domain/chapters"
	"github.com/forPelevin/recap/internal/domain/filtergraph"
	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/ports"
	"github.com/forPelevin/recap/internal/types"
)

// Deps are the collaborators of a run. Transcoder is required; the rest may
// be nil, which disables probing, downloading, rasterizing and job recording.
type Deps struct {
	Transcoder ports.Transcoder
	Prober     ports.Prober
	Downloader ports.Downloader
	Rasterizer ports.Rasterizer
	Recorder   ports.Recorder
	Names      chapters.Namer
	Log        *slog.Logger
}

// Settings is the encoding target shared by every clip of a run.
type Settings struct {
	Layout Layout

	Width        int
	Height       int
	FPS          int
	Fade         time.Duration
	OverlayScale float64
	CRF          int
	Preset       string
	AudioKbps    int
	Loudness     filtergraph.Loudness
}

type Usecase struct {
	d     Deps
	s     Settings
	log   *slog.Logger
	fetch *singleflight.Group
}

func New(d Deps, s Settings) Usecase {
	if s.Preset == "" {
		s.Preset = "medium"
	}
	if s.AudioKbps <= 0 {
		s.AudioKbps = 192
	}
	return Usecase{
		d:     d,
		s:     s,
		log:   logging.NewComponentLogger(d.Log, "recap"),
		fetch: &singleflight.Group{},
	}
}

func (u Usecase) record(ctx context.Context, runID string, ev types.JobEvent) {
	if u.d.Recorder == nil || runID == "" {
		return
	}
	if err := u.d.Recorder.RecordJob(context.WithoutCancel(ctx), runID, ev); err != nil {
		u.log.Warn("record job failed", slog.String(logging.FieldEntry, ev.Subject), slog.Any("error", err))
	}
}
