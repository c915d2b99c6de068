package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output and workspace directories.
type Paths struct {
	TmpDir     string `toml:"tmp_dir" yaml:"tmp_dir"`
	OutputDir  string `toml:"output_dir" yaml:"output_dir"`
	VideosDir  string `toml:"videos_dir" yaml:"videos_dir"`
	CardsDir   string `toml:"cards_dir" yaml:"cards_dir"`
	LogDir     string `toml:"log_dir" yaml:"log_dir"`
	LedgerPath string `toml:"ledger_path" yaml:"ledger_path"`
}

// Video contains the target format every clip is normalized to.
type Video struct {
	Width        int     `toml:"width" yaml:"width"`
	Height       int     `toml:"height" yaml:"height"`
	FPS          int     `toml:"fps" yaml:"fps"`
	FadeSeconds  float64 `toml:"fade_seconds" yaml:"fade_seconds"`
	OverlayScale float64 `toml:"overlay_scale" yaml:"overlay_scale"`
	CRF          int     `toml:"crf" yaml:"crf"`
	Preset       string  `toml:"preset" yaml:"preset"`
}

// Audio contains AAC and loudness normalization settings.
type Audio struct {
	BitrateKbps    int     `toml:"bitrate_kbps" yaml:"bitrate_kbps"`
	IntegratedLUFS float64 `toml:"integrated_lufs" yaml:"integrated_lufs"`
	TruePeakDB     float64 `toml:"true_peak_db" yaml:"true_peak_db"`
	LRA            float64 `toml:"lra" yaml:"lra"`
}

type Workers struct {
	Parallel bool `toml:"parallel" yaml:"parallel"`
	Reserve  int  `toml:"reserve" yaml:"reserve"`
}

type Variants struct {
	Straight bool `toml:"straight" yaml:"straight"`
	Reversed bool `toml:"reversed" yaml:"reversed"`
}

// Tools contains executable names or paths.
type Tools struct {
	FFmpeg   string `toml:"ffmpeg" yaml:"ffmpeg"`
	FFprobe  string `toml:"ffprobe" yaml:"ffprobe"`
	YtDlp    string `toml:"yt_dlp" yaml:"yt_dlp"`
	Inkscape string `toml:"inkscape" yaml:"inkscape"`
}

// Downloads controls fetching of missing source videos.
type Downloads struct {
	Enabled      bool     `toml:"enabled" yaml:"enabled"`
	AllowedHosts []string `toml:"allowed_hosts" yaml:"allowed_hosts"`
}

type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for recap.
type Config struct {
	Paths     Paths     `toml:"paths" yaml:"paths"`
	Video     Video     `toml:"video" yaml:"video"`
	Audio     Audio     `toml:"audio" yaml:"audio"`
	Workers   Workers   `toml:"workers" yaml:"workers"`
	Variants  Variants  `toml:"variants" yaml:"variants"`
	Tools     Tools     `toml:"tools" yaml:"tools"`
	Downloads Downloads `toml:"downloads" yaml:"downloads"`
	Logging   Logging   `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath is the project-local config file picked up when no path
// is given.
const DefaultConfigPath = "recap.toml"

// Load reads path (or recap.toml / recap.yaml in the working directory when
// path is empty), applies environment overrides, normalizes paths and
// validates the result. A missing file is not an error; defaults are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		dec := toml.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	for _, name := range []string{DefaultConfigPath, "recap.yaml", "recap.yml"} {
		p, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true, nil
		}
	}
	p, err := filepath.Abs(DefaultConfigPath)
	if err != nil {
		return "", false, err
	}
	return p, false, nil
}

// EnsureDirectories creates the workspace and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TmpDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for flag values.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
