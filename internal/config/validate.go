package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateVariants(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.TmpDir == "" {
		return errors.New("paths.tmp_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.VideosDir == "" {
		return errors.New("paths.videos_dir must be set")
	}
	if c.Paths.CardsDir == "" {
		return errors.New("paths.cards_dir must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	v := c.Video
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("video size must be positive, got %dx%d", v.Width, v.Height)
	}
	if v.Width%2 != 0 || v.Height%2 != 0 {
		return fmt.Errorf("video size must be even for yuv420p, got %dx%d", v.Width, v.Height)
	}
	if v.FPS <= 0 || v.FPS > 240 {
		return fmt.Errorf("video.fps must be between 1 and 240, got %d", v.FPS)
	}
	if v.FadeSeconds < 0 {
		return errors.New("video.fade_seconds must not be negative")
	}
	if v.OverlayScale < 0 || v.OverlayScale > 4 {
		return errors.New("video.overlay_scale must be between 0 and 4")
	}
	if v.CRF < 0 || v.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.BitrateKbps <= 0 {
		return errors.New("audio.bitrate_kbps must be positive")
	}
	if a.IntegratedLUFS < -70 || a.IntegratedLUFS > -5 {
		return errors.New("audio.integrated_lufs must be between -70 and -5")
	}
	if a.TruePeakDB < -9 || a.TruePeakDB > 0 {
		return errors.New("audio.true_peak_db must be between -9 and 0")
	}
	if a.LRA < 1 || a.LRA > 50 {
		return errors.New("audio.lra must be between 1 and 50")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Reserve < 0 {
		return errors.New("workers.reserve must not be negative")
	}
	return nil
}

func (c *Config) validateVariants() error {
	if !c.Variants.Straight && !c.Variants.Reversed {
		return errors.New("at least one of variants.straight and variants.reversed must be enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

// ParseSize parses a WxH frame size such as "1920x1080".
func ParseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected WxH", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("size %q: invalid width", s)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("size %q: invalid height", s)
	}
	return width, height, nil
}
