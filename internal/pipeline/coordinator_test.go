package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/config"
	"github.com/zachdrouin/ComicAlive/internal/imaging"
	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/pipeline"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
	"github.com/zachdrouin/ComicAlive/internal/testsupport"
)

// fakeExtractor plants page images in the destination directory instead of
// unpacking a real archive.
type fakeExtractor struct {
	plant func(destDir string) ([]string, error)
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _, destDir string) ([]string, error) {
	f.calls++
	return f.plant(destDir)
}

// fakeAssembler records what the pipeline asked it to render.
type fakeAssembler struct {
	segments []project.Segment
	clipsDir string
	outPath  string
	err      error
}

func (f *fakeAssembler) Assemble(_ context.Context, segments []project.Segment, clipsDir, outPath string) error {
	f.segments = segments
	f.clipsDir = clipsDir
	f.outPath = outPath
	return f.err
}

// sizeOCR returns dialogue for small crops and nothing for large ones, so
// the frame-sized artifacts of bordered panels stay silent.
type sizeOCR struct {
	text     string
	maxWidth int
}

func (s *sizeOCR) ExtractText(_ context.Context, img image.Image) (string, error) {
	if img.Bounds().Dx() > s.maxWidth {
		return "", nil
	}
	return s.text, nil
}

func quickAnimation(cfg *config.Config) {
	cfg.Animation.FPS = 8
	cfg.Animation.PanelDuration = 0.25
	cfg.Animation.TransitionDuration = 0.25
	cfg.Animation.Style = "pan_scan"
	cfg.Animation.TransitionKind = "fade"
	cfg.Animation.Seed = 11
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issue1.cbz")
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func plantPages(t *testing.T, pages ...*image.RGBA) func(string) ([]string, error) {
	t.Helper()
	return func(destDir string) ([]string, error) {
		paths := make([]string, len(pages))
		for i, page := range pages {
			paths[i] = filepath.Join(destDir, fmt.Sprintf("page_%02d.png", i))
			if err := imaging.Save(paths[i], page); err != nil {
				return nil, err
			}
		}
		return paths, nil
	}
}

func drawEllipse(img *image.RGBA, cx, cy, rx, ry int) {
	ink := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1.0 {
				img.SetRGBA(x, y, ink)
			}
		}
	}
}

// drawBorderedPanel draws a panel as an inked frame with a white interior,
// the shape a detector sees on a typical comic page.
func drawBorderedPanel(img *image.RGBA, r imaging.Rect) {
	ink := image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	draw.Draw(img, r.ToImage(), ink, image.Point{}, draw.Src)
	inner := imaging.Rect{X: r.X + 5, Y: r.Y + 5, W: r.W - 10, H: r.H - 10}
	draw.Draw(img, inner.ToImage(), image.NewUniform(color.White), image.Point{}, draw.Src)
}

func TestRunFullPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	page := testsupport.NewPage(240, 320,
		imaging.Rect{X: 20, Y: 20, W: 200, H: 120},
		imaging.Rect{X: 20, Y: 170, W: 200, H: 120})

	extractor := &fakeExtractor{plant: plantPages(t, page)}
	assembler := &fakeAssembler{}
	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(extractor), pipeline.WithAssembler(assembler))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	outPath := filepath.Join(cfg.Paths.OutputDir, "issue1.mp4")
	if err := c.Run(context.Background(), writeSource(t), outPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := c.Project().Stage; got != project.StageRendered {
		t.Fatalf("expected project at %q, got %q", project.StageRendered, got)
	}
	if extractor.calls != 1 {
		t.Fatalf("expected one extract call, got %d", extractor.calls)
	}
	if assembler.outPath != outPath {
		t.Fatalf("expected output %s, got %s", outPath, assembler.outPath)
	}

	// Two panels and the transition between them, transition in the middle.
	if len(assembler.segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(assembler.segments))
	}
	kinds := []project.ClipKind{
		assembler.segments[0].Clip.Kind,
		assembler.segments[1].Clip.Kind,
		assembler.segments[2].Clip.Kind,
	}
	if kinds[0] == project.ClipTransition || kinds[1] != project.ClipTransition || kinds[2] == project.ClipTransition {
		t.Fatalf("unexpected segment kinds: %v", kinds)
	}
	for i, segment := range assembler.segments {
		if segment.OrderIndex != i {
			t.Fatalf("segment %d has order index %d", i, segment.OrderIndex)
		}
		if len(segment.Clip.Frames) == 0 {
			t.Fatalf("segment %d has no frames", i)
		}
	}

	// The run succeeded, so the work directory was cleaned up.
	if _, err := os.Stat(c.WorkDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected work dir removed, stat err: %v", err)
	}
}

func TestRunNarratesPanelsWithDialogue(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation, testsupport.WithAudio())

	// First panel carries a speech bubble, second is wordless art.
	page := image.NewRGBA(image.Rect(0, 0, 400, 600))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawBorderedPanel(page, imaging.Rect{X: 40, Y: 40, W: 320, H: 240})
	drawEllipse(page, 200, 160, 60, 40)
	ink := image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	draw.Draw(page, imaging.Rect{X: 40, Y: 340, W: 320, H: 200}.ToImage(), ink, image.Point{}, draw.Src)

	assembler := &fakeAssembler{}
	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, page)}),
		pipeline.WithAssembler(assembler),
		pipeline.WithOCR(&sizeOCR{text: "Pow! Look out!", maxWidth: 300}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if err := c.Run(context.Background(), writeSource(t), filepath.Join(cfg.Paths.OutputDir, "out.mp4")); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(assembler.segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(assembler.segments))
	}
	first := assembler.segments[0]
	if first.Clip.Kind == project.ClipTransition {
		t.Fatalf("expected panel clip first, got %v", first.Clip.Kind)
	}
	if first.Audio == nil {
		t.Fatal("expected narration attached to the dialogue panel")
	}
	// Placeholder tone (0.1s per word, 3 words) followed by the keyword
	// impact effect (0.25s).
	if first.Audio.Duration < 0.5 || first.Audio.Duration > 0.6 {
		t.Fatalf("unexpected narration duration %f", first.Audio.Duration)
	}
	if assembler.segments[1].Audio != nil || assembler.segments[2].Audio != nil {
		t.Fatal("expected transition and wordless panel to stay silent")
	}
}

// captionOCR reads the same text from every region, the shape of a narration
// box that covers the panel without any speech bubble around it.
type captionOCR struct {
	text string
}

func (c *captionOCR) ExtractText(_ context.Context, _ image.Image) (string, error) {
	return c.text, nil
}

func TestRunNarratesPanelCaptions(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation, testsupport.WithAudio())

	// A blank page becomes one whole-page panel with no bubbles; its
	// caption text must still reach narration.
	blank := testsupport.NewPage(240, 320)

	assembler := &fakeAssembler{}
	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, blank)}),
		pipeline.WithAssembler(assembler),
		pipeline.WithOCR(&captionOCR{text: "Meanwhile, across town..."}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if err := c.Run(context.Background(), writeSource(t), filepath.Join(cfg.Paths.OutputDir, "out.mp4")); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(assembler.segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(assembler.segments))
	}
	audio := assembler.segments[0].Audio
	if audio == nil {
		t.Fatal("expected caption-only panel to be narrated")
	}
	// Placeholder tone, 0.1s per word, 3 words, no action keywords.
	if audio.Duration < 0.25 || audio.Duration > 0.35 {
		t.Fatalf("unexpected narration duration %f", audio.Duration)
	}
}

func TestRunWholePageFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	blank := testsupport.NewPage(240, 320)

	assembler := &fakeAssembler{}
	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, blank)}),
		pipeline.WithAssembler(assembler))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if err := c.Run(context.Background(), writeSource(t), filepath.Join(cfg.Paths.OutputDir, "out.mp4")); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(assembler.segments) != 1 {
		t.Fatalf("expected the blank page kept as one panel, got %d segments", len(assembler.segments))
	}
	clip := assembler.segments[0].Clip
	if clip.Kind == project.ClipTransition {
		t.Fatalf("unexpected clip kind %v", clip.Kind)
	}
}

func TestRunFailsWithNothingToAssemble(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation, func(cfg *config.Config) {
		cfg.Detection.WholePageFallback = false
	})
	blank := testsupport.NewPage(240, 320)

	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, blank)}),
		pipeline.WithAssembler(&fakeAssembler{}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	err = c.Run(context.Background(), writeSource(t), filepath.Join(cfg.Paths.OutputDir, "out.mp4"))
	if !errors.Is(err, services.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	// Failed runs keep the work directory for inspection.
	if _, statErr := os.Stat(c.WorkDir()); statErr != nil {
		t.Fatalf("expected work dir kept after failure: %v", statErr)
	}
}

func TestRunPropagatesExtractFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	wantErr := services.Wrap(services.ErrEmptyInput, "archive", "scan", "archive contains no images", nil)

	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: func(string) ([]string, error) { return nil, wantErr }}),
		pipeline.WithAssembler(&fakeAssembler{}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	err = c.Run(context.Background(), writeSource(t), "")
	if !errors.Is(err, services.ErrEmptyInput) {
		t.Fatalf("expected extraction error surfaced, got %v", err)
	}
}

func TestStageOrderEnforced(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	page := testsupport.NewPage(240, 320, imaging.Rect{X: 20, Y: 20, W: 200, H: 120})

	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, page)}),
		pipeline.WithAssembler(&fakeAssembler{}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	ctx := context.Background()
	if err := c.DetectRegions(ctx); !errors.Is(err, services.ErrPipelineState) {
		t.Fatalf("expected detect without open run rejected, got %v", err)
	}

	if err := c.Open(ctx, writeSource(t)); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Animate(ctx); !errors.Is(err, services.ErrPipelineState) {
		t.Fatalf("expected animate before detect rejected, got %v", err)
	}
	if err := c.Assemble(ctx, ""); !errors.Is(err, services.ErrPipelineState) {
		t.Fatalf("expected assemble before narrate rejected, got %v", err)
	}
	if got := c.Project().Stage; got != project.StageCreated {
		t.Fatalf("rejected operations must not advance the stage, got %q", got)
	}

	// The legal order still works from here.
	if err := c.Extract(ctx); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if err := c.Extract(ctx); !errors.Is(err, services.ErrPipelineState) {
		t.Fatalf("expected repeated extract rejected, got %v", err)
	}
	if err := c.DetectRegions(ctx); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if got := c.Project().Stage; got != project.StageDetected {
		t.Fatalf("expected stage %q, got %q", project.StageDetected, got)
	}
}

func TestOpenRejectsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	c, err := pipeline.New(cfg, logging.NewNop(), pipeline.WithAssembler(&fakeAssembler{}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	err = c.Open(context.Background(), filepath.Join(t.TempDir(), "missing.cbz"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunEmitsProgressEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t, quickAnimation)
	page := testsupport.NewPage(240, 320, imaging.Rect{X: 20, Y: 20, W: 200, H: 120})

	c, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithExtractor(&fakeExtractor{plant: plantPages(t, page)}),
		pipeline.WithAssembler(&fakeAssembler{}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if err := c.Run(context.Background(), writeSource(t), ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	finished := map[string]bool{}
	for event := range c.Events() {
		if event.Percent == 100 {
			finished[event.Stage] = true
		}
	}
	for _, stage := range []string{"extract", "detect", "animate", "narrate", "assemble"} {
		if !finished[stage] {
			t.Fatalf("no completion event for stage %q (got %v)", stage, finished)
		}
	}
}
