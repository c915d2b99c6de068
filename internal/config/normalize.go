package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables that override file values. They are read after
// .env has been loaded by the CLI.
var envStrings = map[string]func(*Config) *string{
	"RECAP_TMP_DIR":    func(c *Config) *string { return &c.Paths.TmpDir },
	"RECAP_OUTPUT_DIR": func(c *Config) *string { return &c.Paths.OutputDir },
	"RECAP_VIDEOS_DIR": func(c *Config) *string { return &c.Paths.VideosDir },
	"RECAP_CARDS_DIR":  func(c *Config) *string { return &c.Paths.CardsDir },
	"RECAP_LOG_DIR":    func(c *Config) *string { return &c.Paths.LogDir },
	"RECAP_FFMPEG":     func(c *Config) *string { return &c.Tools.FFmpeg },
	"RECAP_FFPROBE":    func(c *Config) *string { return &c.Tools.FFprobe },
	"RECAP_YT_DLP":     func(c *Config) *string { return &c.Tools.YtDlp },
	"RECAP_INKSCAPE":   func(c *Config) *string { return &c.Tools.Inkscape },
	"RECAP_LOG_LEVEL":  func(c *Config) *string { return &c.Logging.Level },
	"RECAP_LOG_FORMAT": func(c *Config) *string { return &c.Logging.Format },
}

func (c *Config) applyEnv() {
	for key, field := range envStrings {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*field(c) = strings.TrimSpace(v)
		}
	}
	if v, ok := os.LookupEnv("RECAP_PARALLEL"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Workers.Parallel = b
		}
	}
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	if c.Video.Preset == "" {
		c.Video.Preset = defaultPreset
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.TmpDir, err = expandPath(c.Paths.TmpDir); err != nil {
		return fmt.Errorf("paths.tmp_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.VideosDir, err = expandPath(c.Paths.VideosDir); err != nil {
		return fmt.Errorf("paths.videos_dir: %w", err)
	}
	if c.Paths.CardsDir, err = expandPath(c.Paths.CardsDir); err != nil {
		return fmt.Errorf("paths.cards_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" && c.Paths.TmpDir != "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.TmpDir, defaultLedgerName)
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	trim := func(v *string, def string) {
		*v = strings.TrimSpace(*v)
		if *v == "" {
			*v = def
		}
	}
	trim(&c.Tools.FFmpeg, defaults.FFmpeg)
	trim(&c.Tools.FFprobe, defaults.FFprobe)
	trim(&c.Tools.YtDlp, defaults.YtDlp)
	trim(&c.Tools.Inkscape, defaults.Inkscape)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
