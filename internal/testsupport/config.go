// Package testsupport provides shared fixtures for package tests: configs
// seeded with temp directories and synthetic comic page images.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Audio.Enabled = false
	cfg.OCR.Enabled = false
	cfg.Workflow.Workers = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAudio enables audio synthesis on the test config.
func WithAudio() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audio.Enabled = true
	}
}

// WithSeed pins the animation random seed.
func WithSeed(seed int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Animation.Seed = seed
	}
}
