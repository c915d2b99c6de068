package cli

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/forPelevin/recap/internal/config"
)

type toolStatus struct {
	Name     string
	Command  string
	Path     string
	Required bool
	Disabled bool
	Err      error
}

func (s toolStatus) state() string {
	switch {
	case s.Disabled:
		return "disabled"
	case s.Err == nil:
		return "ok"
	case s.Required:
		return "missing"
	default:
		return "missing (optional)"
	}
}

// checkTools resolves every external tool the config refers to.
func checkTools(cfg *config.Config) []toolStatus {
	tools := []toolStatus{
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Required: true},
		{Name: "ffprobe", Command: cfg.Tools.FFprobe, Required: true},
		{Name: "yt-dlp", Command: cfg.Tools.YtDlp, Disabled: !cfg.Downloads.Enabled},
		{Name: "inkscape", Command: cfg.Tools.Inkscape},
	}
	for i := range tools {
		if tools[i].Disabled {
			continue
		}
		tools[i].Path, tools[i].Err = exec.LookPath(tools[i].Command)
	}
	return tools
}

func newDoctorCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			tools := checkTools(cfg)
			rows := make([][]string, 0, len(tools))
			var missing []error
			for _, t := range tools {
				rows = append(rows, []string{t.Name, t.Command, t.state(), t.Path})
				if t.Required && t.Err != nil {
					missing = append(missing, fmt.Errorf("%s: %w", t.Name, t.Err))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Command", "Status", "Path"}, rows))
			return errors.Join(missing...)
		},
	}
}
