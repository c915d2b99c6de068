package ports

import (
	"context"
	"time"

	"github.com/forPelevin/recap/internal/types"
)

// Transcoder runs one ffmpeg invocation. The caller owns the argument list,
// including the output path.
type Transcoder interface {
	Transcode(ctx context.Context, args []string) error
}

type Prober interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Downloader fetches a remote video into outPath.
type Downloader interface {
	Download(ctx context.Context, url, outPath string) error
}

// Rasterizer converts a vector card into a PNG at outPath.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgPath, outPath string, width, height int) error
}

// Recorder persists per-job outcomes of a run.
type Recorder interface {
	RecordJob(ctx context.Context, runID string, ev types.JobEvent) error
}
