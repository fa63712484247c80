package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Detection contains panel and speech-bubble detection tuning.
type Detection struct {
	// MinPanelRatio and MaxPanelRatio bound panel area as a fraction of page area.
	MinPanelRatio float64 `toml:"min_panel_ratio"`
	MaxPanelRatio float64 `toml:"max_panel_ratio"`
	// PanelThreshold is the luminance cutoff for the inverted binarization.
	PanelThreshold int `toml:"panel_threshold"`
	// BubbleMinArea drops contours below this pixel area during bubble detection.
	BubbleMinArea int `toml:"bubble_min_area"`
	// BubbleSolidity is the minimum contourArea/convexHullArea for bubbles.
	BubbleSolidity float64 `toml:"bubble_solidity"`
	// WholePageFallback treats a page with no detected panels as one panel.
	WholePageFallback bool `toml:"whole_page_fallback"`
}

// Animation contains motion synthesis settings.
type Animation struct {
	FPS                int     `toml:"fps"`
	Style              string  `toml:"style"` // pan_scan, ken_burns, mixed
	PanelDuration      float64 `toml:"panel_duration"`
	TransitionDuration float64 `toml:"transition_duration"`
	TransitionKind     string  `toml:"transition_kind"` // fade, slide, zoom
	SpeedFactor        float64 `toml:"speed_factor"`
	// Seed fixes the random source for ken_burns/mixed so runs reproduce.
	// Zero seeds from the clock.
	Seed int64 `toml:"seed"`
}

// Audio contains narration and sound-effect settings.
type Audio struct {
	Enabled      bool    `toml:"enabled"`
	Voice        string  `toml:"voice"` // a voice name, or "mixed" for per-bubble voices
	Pitch        float64 `toml:"pitch"`
	Rate         float64 `toml:"rate"`
	SoundEffects bool    `toml:"sound_effects"`
	// TTSBinary is the synthesis command; it must accept -o <out> <text>.
	TTSBinary string `toml:"tts_binary"`
	// SynthPerMinute rate-limits synthesis requests (cloud backends throttle).
	SynthPerMinute int `toml:"synth_per_minute"`
}

// OCR contains text extraction settings.
type OCR struct {
	Enabled  bool   `toml:"enabled"`
	Language string `toml:"language"`
	// CacheTTLSeconds bounds how long per-region OCR results are reused.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// FFmpeg contains output encoding settings.
type FFmpeg struct {
	Binary  string `toml:"binary"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Bitrate string `toml:"bitrate"`
	Preset  string `toml:"preset"`
	CRF     int    `toml:"crf"`
}

// Archive contains comic container extraction settings.
type Archive struct {
	UnrarBinary    string `toml:"unrar_binary"`
	SevenZipBinary string `toml:"sevenzip_binary"`
}

// Workflow contains per-stage parallelism settings.
type Workflow struct {
	// Workers caps concurrent per-panel units inside animate/narrate.
	Workers int `toml:"workers"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ComicAlive.
//
// Configuration sections by subsystem:
//   - Paths: work, output, and log directories
//   - Detection: panel/bubble geometry thresholds
//   - Animation: motion style, fps, durations
//   - Audio: narration voice and sound effects
//   - OCR: text extraction language and caching
//   - FFmpeg: encoder binary and output parameters
//   - Archive: CBR extraction binaries
//   - Workflow: worker pool sizing
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Detection Detection `toml:"detection"`
	Animation Animation `toml:"animation"`
	Audio     Audio     `toml:"audio"`
	OCR       OCR       `toml:"ocr"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Archive   Archive   `toml:"archive"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/comicalive/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists the
// defaults are returned and exists is false.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	defaults := Default()
	cfg = &defaults

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, openErr := os.Open(resolvedPath)
		if openErr != nil {
			return nil, "", false, fmt.Errorf("open config: %w", openErr)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if decodeErr := decoder.Decode(cfg); decodeErr != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", decodeErr)
		}
	}

	if err = cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, statErr := os.Stat(defaultPath); statErr == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}
