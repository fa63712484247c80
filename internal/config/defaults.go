package config

const (
	defaultWorkDir            = "~/.local/share/comicalive/work"
	defaultOutputDir          = "~/comics/rendered"
	defaultLogDir             = "~/.local/share/comicalive/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMinPanelRatio      = 0.01
	defaultMaxPanelRatio      = 0.9
	defaultPanelThreshold     = 220
	defaultBubbleMinArea      = 100
	defaultBubbleSolidity     = 0.7
	defaultFPS                = 24
	defaultStyle              = "pan_scan"
	defaultPanelDuration      = 2.5
	defaultTransitionDuration = 0.5
	defaultTransitionKind     = "fade"
	defaultSpeedFactor        = 1.0
	defaultVoice              = "en-US-Neural2-F"
	defaultSynthPerMinute     = 60
	defaultOCRLanguage        = "eng"
	defaultOCRCacheTTL        = 3600
	defaultFFmpegBinary       = "ffmpeg"
	defaultOutputWidth        = 1920
	defaultOutputHeight       = 1080
	defaultBitrate            = "8000k"
	defaultPreset             = "medium"
	defaultCRF                = 23
	defaultUnrarBinary        = "unrar"
	defaultSevenZipBinary     = "7z"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Detection: Detection{
			MinPanelRatio:     defaultMinPanelRatio,
			MaxPanelRatio:     defaultMaxPanelRatio,
			PanelThreshold:    defaultPanelThreshold,
			BubbleMinArea:     defaultBubbleMinArea,
			BubbleSolidity:    defaultBubbleSolidity,
			WholePageFallback: true,
		},
		Animation: Animation{
			FPS:                defaultFPS,
			Style:              defaultStyle,
			PanelDuration:      defaultPanelDuration,
			TransitionDuration: defaultTransitionDuration,
			TransitionKind:     defaultTransitionKind,
			SpeedFactor:        defaultSpeedFactor,
		},
		Audio: Audio{
			Enabled:        true,
			Voice:          defaultVoice,
			Rate:           1.0,
			SoundEffects:   true,
			SynthPerMinute: defaultSynthPerMinute,
		},
		OCR: OCR{
			Enabled:         true,
			Language:        defaultOCRLanguage,
			CacheTTLSeconds: defaultOCRCacheTTL,
		},
		FFmpeg: FFmpeg{
			Binary:  defaultFFmpegBinary,
			Width:   defaultOutputWidth,
			Height:  defaultOutputHeight,
			Bitrate: defaultBitrate,
			Preset:  defaultPreset,
			CRF:     defaultCRF,
		},
		Archive: Archive{
			UnrarBinary:    defaultUnrarBinary,
			SevenZipBinary: defaultSevenZipBinary,
		},
		Workflow: Workflow{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
