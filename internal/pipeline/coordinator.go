package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/zachdrouin/ComicAlive/internal/config"
	"github.com/zachdrouin/ComicAlive/internal/detect"
	"github.com/zachdrouin/ComicAlive/internal/fileutil"
	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/render"
	"github.com/zachdrouin/ComicAlive/internal/services"
	"github.com/zachdrouin/ComicAlive/internal/services/archive"
	"github.com/zachdrouin/ComicAlive/internal/services/ffmpeg"
	"github.com/zachdrouin/ComicAlive/internal/services/ocr"
	"github.com/zachdrouin/ComicAlive/internal/services/tts"
	"github.com/zachdrouin/ComicAlive/internal/stage"
)

// Extractor unpacks the source archive into page images.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) ([]string, error)
}

// Narrator synthesizes narration audio for panel text.
type Narrator interface {
	Synthesize(ctx context.Context, req tts.Request, outPath string) (tts.Result, error)
	NextVoice() string
}

// Assembler renders segments into the final video.
type Assembler interface {
	Assemble(ctx context.Context, segments []project.Segment, clipsDir, outPath string) error
}

// Option overrides a collaborator, primarily for tests.
type Option func(*Coordinator)

// WithExtractor injects an archive extractor.
func WithExtractor(e Extractor) Option {
	return func(c *Coordinator) { c.extractor = e }
}

// WithNarrator injects a speech synthesizer.
func WithNarrator(n Narrator) Option {
	return func(c *Coordinator) { c.narrator = n }
}

// WithOCR injects a text extractor.
func WithOCR(t detect.TextExtractor) Option {
	return func(c *Coordinator) { c.ocr = t }
}

// WithAssembler injects a sequence assembler.
func WithAssembler(a Assembler) Option {
	return func(c *Coordinator) { c.assembler = a }
}

// Coordinator owns one conversion run end to end.
type Coordinator struct {
	cfg    *config.Config
	logger *slog.Logger

	extractor Extractor
	narrator  Narrator
	ocr       detect.TextExtractor
	assembler Assembler
	detector  *detect.Detector
	bubbles   *detect.BubbleFinder

	baseSeed int64

	runID   string
	workDir string
	lock    *flock.Flock
	store   *project.Store
	proj    *project.Project

	events chan Progress
}

// New builds a coordinator from config, wiring the default collaborators for
// any not injected through options.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Coordinator{
		cfg:    cfg,
		logger: logger,
		events: make(chan Progress, 64),
		detector: detect.NewDetector(detect.Options{
			MinAreaRatio: cfg.Detection.MinPanelRatio,
			MaxAreaRatio: cfg.Detection.MaxPanelRatio,
			Threshold:    uint8(cfg.Detection.PanelThreshold),
		}),
		bubbles: detect.NewBubbleFinder(detect.BubbleOptions{
			MinArea:     cfg.Detection.BubbleMinArea,
			MinSolidity: cfg.Detection.BubbleSolidity,
		}),
		baseSeed: cfg.Animation.Seed,
	}
	if c.baseSeed == 0 {
		c.baseSeed = time.Now().UnixNano()
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.extractor == nil {
		c.extractor = archive.New(cfg.Archive.UnrarBinary, cfg.Archive.SevenZipBinary)
	}
	if c.narrator == nil && cfg.Audio.Enabled {
		c.narrator = tts.New(cfg.Audio.TTSBinary, cfg.Audio.SynthPerMinute)
	}
	if c.ocr == nil && cfg.OCR.Enabled {
		c.ocr = ocr.New(cfg.OCR.Language, time.Duration(cfg.OCR.CacheTTLSeconds)*time.Second)
	}
	if c.assembler == nil {
		encoder, err := ffmpeg.New(cfg.FFmpeg.Binary, ffmpeg.Settings{
			Width:   cfg.FFmpeg.Width,
			Height:  cfg.FFmpeg.Height,
			Bitrate: cfg.FFmpeg.Bitrate,
			Preset:  cfg.FFmpeg.Preset,
			CRF:     cfg.FFmpeg.CRF,
		})
		if err != nil {
			return nil, err
		}
		c.assembler = render.NewAssembler(encoder, logger)
	}
	return c, nil
}

// Open creates the run's work directory, takes its lock, and records the
// new project. Must be called before any stage operation.
func (c *Coordinator) Open(ctx context.Context, sourcePath string) error {
	if c.proj != nil {
		return services.Wrap(services.ErrPipelineState, "open", "open", "run already open", nil)
	}
	if !fileutil.FileExists(sourcePath) {
		return services.Wrap(services.ErrValidation, "open", "inspect source",
			fmt.Sprintf("%s is not a readable file", sourcePath), nil)
	}

	c.runID = uuid.NewString()
	c.workDir = filepath.Join(c.cfg.Paths.WorkDir, c.runID)
	for _, dir := range []string{
		c.workDir,
		project.PagesDir(c.workDir),
		project.FramesDir(c.workDir),
		project.AudioDir(c.workDir),
		project.ClipsDir(c.workDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create work dir: %w", err)
		}
	}

	c.lock = flock.New(project.LockPath(c.workDir))
	locked, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock work dir: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrPipelineState, "open", "lock",
			"work directory is held by another run", nil)
	}

	store, err := project.Open(project.DatabasePath(c.workDir))
	if err != nil {
		_ = c.lock.Unlock()
		return err
	}
	proj, err := store.CreateProject(ctx, c.runID, sourcePath, c.workDir)
	if err != nil {
		_ = store.Close()
		_ = c.lock.Unlock()
		return err
	}
	c.store = store
	c.proj = proj

	c.logger.Info("run opened",
		logging.String(logging.FieldRunID, c.runID),
		logging.String("source", sourcePath),
		logging.String("work_dir", c.workDir))
	return nil
}

// Project returns the current project snapshot, nil before Open.
func (c *Coordinator) Project() *project.Project {
	return c.proj
}

// RunID returns the identifier of the open run.
func (c *Coordinator) RunID() string {
	return c.runID
}

// WorkDir returns the run's work directory.
func (c *Coordinator) WorkDir() string {
	return c.workDir
}

// Close releases the work directory lock and the store. The work directory
// itself is left for inspection; Cleanup removes it.
func (c *Coordinator) Close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
		c.store = nil
	}
	if c.lock != nil {
		if err := c.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.lock = nil
	}
	close(c.events)
	return firstErr
}

// Cleanup discards the run's work directory and everything in it.
func (c *Coordinator) Cleanup() error {
	if c.workDir == "" {
		return nil
	}
	if err := os.RemoveAll(c.workDir); err != nil {
		return fmt.Errorf("remove work dir: %w", err)
	}
	c.logger.Info("work directory removed", logging.String("work_dir", c.workDir))
	return nil
}

// Run executes the full pipeline for sourcePath, writing the final video to
// outputPath. The work directory is kept on failure for inspection and
// removed on success.
func (c *Coordinator) Run(ctx context.Context, sourcePath, outputPath string) error {
	if err := c.Open(ctx, sourcePath); err != nil {
		_ = c.Close()
		return err
	}
	ctx = services.WithRunID(ctx, c.runID)
	steps := []func(context.Context) error{
		c.Extract,
		c.DetectRegions,
		c.Animate,
		c.Narrate,
		func(ctx context.Context) error { return c.Assemble(ctx, outputPath) },
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			c.logger.Error("run failed",
				logging.String(logging.FieldRunID, c.runID),
				logging.Error(err))
			_ = c.Close()
			return err
		}
	}
	if err := c.Close(); err != nil {
		return err
	}
	return c.Cleanup()
}

// HealthChecks reports the readiness of every stage's collaborators.
func (c *Coordinator) HealthChecks(ctx context.Context) []stage.Health {
	runners := []stageRunner{
		c.extractStage(),
		c.detectStage(),
		c.animateStage(),
		c.narrateStage(),
		c.assembleStage(""),
	}
	health := make([]stage.Health, 0, len(runners))
	for _, r := range runners {
		health = append(health, r.HealthCheck(ctx))
	}
	return health
}
