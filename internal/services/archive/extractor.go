package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zachdrouin/ComicAlive/internal/services"
)

// imageExtensions lists the page formats the pipeline can decode.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) error
}

// Option configures the extractor.
type Option func(*Extractor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Extractor) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// Extractor unpacks CBZ/CBR archives and returns page images in natural
// filename order.
type Extractor struct {
	unrarBinary    string
	sevenZipBinary string
	exec           Executor
}

// New constructs an extractor. Binaries may be bare names resolved via PATH.
func New(unrarBinary, sevenZipBinary string, opts ...Option) *Extractor {
	e := &Extractor{
		unrarBinary:    strings.TrimSpace(unrarBinary),
		sevenZipBinary: strings.TrimSpace(sevenZipBinary),
		exec:           commandExecutor{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract unpacks archivePath into destDir and returns the contained image
// files sorted in natural reading order. Unsupported extensions fail with
// ErrUnsupportedFormat; an archive with no images fails with ErrEmptyInput.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction dir: %w", err)
	}

	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".cbz", ".zip":
		if err := extractZip(archivePath, destDir); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "extract", "unzip", filepath.Base(archivePath), err)
		}
	case ".cbr", ".rar":
		if err := e.extractRar(ctx, archivePath, destDir); err != nil {
			return nil, err
		}
	default:
		return nil, services.Wrap(services.ErrUnsupportedFormat, "extract", "inspect",
			fmt.Sprintf("extension %q", filepath.Ext(archivePath)), nil)
	}

	images, err := collectImages(destDir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, services.Wrap(services.ErrEmptyInput, "extract", "collect",
			"archive contains no page images", nil)
	}
	sortNatural(images)
	return images, nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target, err := sanitizePath(destDir, file.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create entry dir: %w", err)
		}
		if err := copyZipEntry(file, target); err != nil {
			return err
		}
	}
	return nil
}

func copyZipEntry(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return dst.Close()
}

// sanitizePath rejects entries that would escape the extraction directory.
func sanitizePath(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction dir", name)
	}
	return filepath.Join(destDir, clean), nil
}

func (e *Extractor) extractRar(ctx context.Context, archivePath, destDir string) error {
	unrarErr := e.exec.Run(ctx, e.unrarBinary, "x", "-o+", "-y", archivePath, destDir+string(os.PathSeparator))
	if unrarErr == nil {
		return nil
	}
	sevenErr := e.exec.Run(ctx, e.sevenZipBinary, "x", "-y", "-o"+destDir, archivePath)
	if sevenErr == nil {
		return nil
	}
	return services.Wrap(services.ErrExternalTool, "extract", "unrar",
		fmt.Sprintf("unrar failed (%v), 7z fallback failed", unrarErr), sevenErr)
}

func collectImages(destDir string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(destDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			// Resource forks in zips produced on macOS.
			if name == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]; ok {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan extraction dir: %w", err)
	}
	return images, nil
}

// sortNatural orders paths so page2 sorts before page10.
func sortNatural(paths []string) {
	collator := collate.New(language.English, collate.Numeric)
	collator.SortStrings(paths)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args ...string) error {
	if strings.TrimSpace(binary) == "" {
		return fmt.Errorf("binary not configured")
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
