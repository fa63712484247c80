package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// normalize expands home-relative paths and applies zero-value fallbacks that
// cannot be expressed as struct defaults.
func (c *Config) normalize() error {
	expanded, err := expandPaths(
		c.Paths.WorkDir,
		c.Paths.OutputDir,
		c.Paths.LogDir,
	)
	if err != nil {
		return err
	}
	c.Paths.WorkDir = expanded[0]
	c.Paths.OutputDir = expanded[1]
	c.Paths.LogDir = expanded[2]

	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = runtime.NumCPU()
	}
	if c.Animation.SpeedFactor == 0 {
		c.Animation.SpeedFactor = defaultSpeedFactor
	}
	if c.Audio.Rate == 0 {
		c.Audio.Rate = 1.0
	}
	return nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves ~ prefixes and relativizes caller-supplied locations
// to absolute paths.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPaths(paths ...string) ([]string, error) {
	out := make([]string, len(paths))
	for i, path := range paths {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	return out, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
