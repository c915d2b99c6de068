package ytdlp

import (
	"context"
	"os/exec"

	"github.com/forPelevin/recap/internal/types"
)

type Adapter struct {
	bin          string
	ffmpeg       string
	allowedHosts []string
}

// New returns a yt-dlp adapter. A non-default ffmpegPath is forwarded so
// merged downloads use the same ffmpeg as the rest of the run.
func New(binPath, ffmpegPath string, allowedHosts []string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, ffmpeg: ffmpegPath, allowedHosts: allowedHosts}
}

func (a *Adapter) Download(ctx context.Context, link, outPath string) error {
	if err := ValidateURL(link, a.allowedHosts); err != nil {
		return err
	}
	args := a.args(link, outPath)
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &types.ToolError{Tool: a.bin, Args: args, Output: string(b), Err: err}
	}
	return nil
}

func (a *Adapter) args(link, outPath string) []string {
	args := []string{"-f", "bv*+ba/b", "--no-playlist", "--no-progress"}
	if a.ffmpeg != "" && a.ffmpeg != "ffmpeg" {
		args = append(args, "--ffmpeg-location", a.ffmpeg)
	}
	return append(args, "--merge-output-format", "mp4", "-o", outPath, link)
}
