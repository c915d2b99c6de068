package inkscape

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/forPelevin/recap/internal/types"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "inkscape"
	}
	return &Adapter{bin: binPath}
}

// Rasterize exports svgPath as PNG. Zero width or height keeps the document
// size on that axis.
func (a *Adapter) Rasterize(ctx context.Context, svgPath, outPath string, width, height int) error {
	args := exportArgs(svgPath, outPath, width, height)
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &types.ToolError{Tool: a.bin, Args: args, Output: string(b), Err: err}
	}

	// Inkscape exits 0 on some export failures.
	st, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("inkscape produced no output for %s: %w", svgPath, err)
	}
	if st.Size() == 0 {
		return fmt.Errorf("inkscape produced an empty file for %s", svgPath)
	}
	return nil
}

func exportArgs(svgPath, outPath string, width, height int) []string {
	args := []string{"--export-type=png", "--export-filename", outPath}
	if width > 0 {
		args = append(args, "--export-width", strconv.Itoa(width))
	}
	if height > 0 {
		args = append(args, "--export-height", strconv.Itoa(height))
	}
	return append(args, svgPath)
}
