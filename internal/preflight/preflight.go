package preflight

import (
	"context"

	"github.com/zachdrouin/ComicAlive/internal/config"
	"github.com/zachdrouin/ComicAlive/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the working space required before a run starts. Frame
// dumps for a long book can reach several gigabytes.
const minFreeBytes = 2 << 30

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDiskSpace("Work disk space", cfg.Paths.WorkDir, minFreeBytes),
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if !status.Available && status.Optional {
			result.Passed = true
			result.Detail = status.Detail + " (optional)"
		}
		results = append(results, result)
	}
	return results
}

// Passed reports whether every check succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckSystemDeps evaluates the external binaries for the given config. The
// convert command and `comicalive deps` share this list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpeg.Binary,
			Description: "Required for clip encoding and final assembly",
		},
		{
			Name:        "unrar",
			Command:     cfg.Archive.UnrarBinary,
			Description: "Preferred CBR extractor",
			Optional:    true,
		},
		{
			Name:        "7z",
			Command:     cfg.Archive.SevenZipBinary,
			Description: "CBR extraction fallback",
			Optional:    true,
		},
	}
	if cfg.Audio.Enabled && cfg.Audio.TTSBinary != "" {
		requirements = append(requirements, deps.Requirement{
			Name:        "TTS",
			Command:     cfg.Audio.TTSBinary,
			Description: "Speech synthesis (placeholder tone used when absent)",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
