package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/recap/internal/config"
	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/pipeline"
	"github.com/forPelevin/recap/internal/usecase"
)

type runFlags struct {
	size       string
	fade       float64
	output     string
	cleanup    bool
	noParallel bool
	noStraight bool
	noReversed bool
	noDownload bool
}

func newRunCommand(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <entries.csv>",
		Short: "Build straight and reversed recaps for every show in the entries file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			return run(cmd, cfg, args[0], f.cleanup)
		},
	}

	cmd.Flags().StringVar(&f.size, "size", "", "Output frame size WxH (default from config)")
	cmd.Flags().Float64Var(&f.fade, "fade", 0, "Fade length in seconds")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory for recaps")
	cmd.Flags().BoolVar(&f.cleanup, "cleanup", false, "Remove cached clips after a run without failures")
	cmd.Flags().BoolVar(&f.noParallel, "no-parallel", false, "Process one job at a time")
	cmd.Flags().BoolVar(&f.noStraight, "no-straight", false, "Skip the straight recap")
	cmd.Flags().BoolVar(&f.noReversed, "no-reversed", false, "Skip the reversed recap")
	cmd.Flags().BoolVar(&f.noDownload, "no-download", false, "Never fetch missing source videos")
	return cmd
}

// apply layers explicitly set flags over the loaded config.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("size") {
		w, h, err := config.ParseSize(f.size)
		if err != nil {
			return err
		}
		cfg.Video.Width, cfg.Video.Height = w, h
	}
	if flags.Changed("fade") {
		cfg.Video.FadeSeconds = f.fade
	}
	if flags.Changed("output") {
		dir, err := config.ExpandPath(f.output)
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = dir
	}
	if f.noParallel {
		cfg.Workers.Parallel = false
	}
	if f.noStraight {
		cfg.Variants.Straight = false
	}
	if f.noReversed {
		cfg.Variants.Reversed = false
	}
	if f.noDownload {
		cfg.Downloads.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func run(cmd *cobra.Command, cfg *config.Config, input string, cleanup bool) error {
	log, closer, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		LogDir: cfg.Paths.LogDir,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := pipeline.Run(ctx, cfg, pipeline.Options{Input: input, Cleanup: cleanup, Log: log})
	out := cmd.OutOrStdout()
	printRecaps(out, sum.Result)
	if err != nil {
		return err
	}
	if n := len(sum.Result.Failures); n > 0 {
		printFailures(out, sum.Result.Failures)
		return fmt.Errorf("%d job(s) failed; see %s", n, sum.Manifest)
	}
	fmt.Fprintf(out, "Manifest: %s\n", sum.Manifest)
	return nil
}

func printRecaps(w io.Writer, res usecase.Result) {
	if len(res.Outputs) == 0 {
		return
	}
	rows := make([][]string, 0, len(res.Outputs))
	for _, r := range res.Outputs {
		status := "built"
		if r.Skipped {
			status = "cached"
		}
		rows = append(rows, []string{
			r.Title,
			r.Key.Variant.String(),
			strconv.Itoa(len(r.Chapters)),
			formatDuration(r.Duration),
			status,
			r.Path,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Show", "Variant", "Chapters", "Duration", "Status", "File"}, rows, 2, 3))
}

func printFailures(w io.Writer, failures []usecase.Failure) {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Subject, f.Variant.String(), f.Stage, firstLine(f.Err.Error())})
	}
	fmt.Fprintln(w, renderTable([]string{"Subject", "Variant", "Stage", "Error"}, rows))
}
