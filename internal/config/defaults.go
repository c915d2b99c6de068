package config

const (
	defaultTmpDir         = "tmp"
	defaultOutputDir      = "output"
	defaultVideosDir      = "videos"
	defaultCardsDir       = "cards"
	defaultLedgerName     = "ledger.db"
	defaultWidth          = 1920
	defaultHeight         = 1080
	defaultFPS            = 60
	defaultFadeSeconds    = 0.25
	defaultOverlayScale   = 0.925
	defaultCRF            = 18
	defaultPreset         = "medium"
	defaultBitrateKbps    = 192
	defaultIntegratedLUFS = -14
	defaultTruePeakDB     = -1.5
	defaultLRA            = 11
	defaultWorkerReserve  = 2
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TmpDir:    defaultTmpDir,
			OutputDir: defaultOutputDir,
			VideosDir: defaultVideosDir,
			CardsDir:  defaultCardsDir,
		},
		Video: Video{
			Width:        defaultWidth,
			Height:       defaultHeight,
			FPS:          defaultFPS,
			FadeSeconds:  defaultFadeSeconds,
			OverlayScale: defaultOverlayScale,
			CRF:          defaultCRF,
			Preset:       defaultPreset,
		},
		Audio: Audio{
			BitrateKbps:    defaultBitrateKbps,
			IntegratedLUFS: defaultIntegratedLUFS,
			TruePeakDB:     defaultTruePeakDB,
			LRA:            defaultLRA,
		},
		Workers:  Workers{Parallel: true, Reserve: defaultWorkerReserve},
		Variants: Variants{Straight: true, Reversed: true},
		Tools: Tools{
			FFmpeg:   "ffmpeg",
			FFprobe:  "ffprobe",
			YtDlp:    "yt-dlp",
			Inkscape: "inkscape",
		},
		Downloads: Downloads{Enabled: true},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
