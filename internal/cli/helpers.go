package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/recap/internal/config"
)

func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(g.config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(g.logLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(g.logFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// firstLine keeps table cells readable when an error carries tool output.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
