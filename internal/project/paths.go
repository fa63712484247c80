package project

import "path/filepath"

// Work directory layout for a run. Everything under the work directory is
// disposable once the final video has been written.

// DatabasePath returns the SQLite file for a work directory.
func DatabasePath(workDir string) string {
	return filepath.Join(workDir, "project.db")
}

// PagesDir holds extracted page images.
func PagesDir(workDir string) string {
	return filepath.Join(workDir, "pages")
}

// FramesDir holds per-clip frame directories.
func FramesDir(workDir string) string {
	return filepath.Join(workDir, "frames")
}

// AudioDir holds synthesized narration and effect tracks.
func AudioDir(workDir string) string {
	return filepath.Join(workDir, "audio")
}

// ClipsDir holds encoded intermediate video segments.
func ClipsDir(workDir string) string {
	return filepath.Join(workDir, "clips")
}

// LockPath is the advisory lock file guarding a work directory.
func LockPath(workDir string) string {
	return filepath.Join(workDir, ".comicalive.lock")
}
