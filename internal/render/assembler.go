package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
)

// Encoder is the subset of the ffmpeg client the assembler drives.
type Encoder interface {
	RenderFrames(ctx context.Context, manifestPath, outPath string) error
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
	Concat(ctx context.Context, listPath, outPath string) error
}

// Assembler turns an ordered segment list into one video file.
type Assembler struct {
	enc    Encoder
	logger *slog.Logger
}

// NewAssembler constructs an assembler. A nil logger is replaced with a
// no-op logger.
func NewAssembler(enc Encoder, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{enc: enc, logger: logger}
}

// Assemble renders every segment into clipsDir and concatenates them into
// outPath. Segments must already be in play order. An empty segment list is
// ErrEmptyInput: there is nothing to render.
func (a *Assembler) Assemble(ctx context.Context, segments []project.Segment, clipsDir, outPath string) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrEmptyInput, "assemble", "plan", "no segments to render", nil)
	}
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return fmt.Errorf("create clips dir: %w", err)
	}

	clipPaths := make([]string, 0, len(segments))
	for _, segment := range segments {
		clipPath, err := a.renderSegment(ctx, segment, clipsDir)
		if err != nil {
			return err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	listPath := filepath.Join(clipsDir, "segments.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(clipPaths)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	if err := a.enc.Concat(ctx, listPath, outPath); err != nil {
		return err
	}
	a.logger.Info("sequence assembled",
		logging.Int("segments", len(segments)),
		logging.String("output", outPath))
	return nil
}

func (a *Assembler) renderSegment(ctx context.Context, segment project.Segment, clipsDir string) (string, error) {
	manifestPath := filepath.Join(clipsDir, fmt.Sprintf("segment_%03d.txt", segment.OrderIndex))
	manifest := FrameManifest(segment.Clip.Frames, segment.Clip.FrameDuration)
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return "", fmt.Errorf("write segment manifest: %w", err)
	}

	videoPath := filepath.Join(clipsDir, fmt.Sprintf("segment_%03d.mp4", segment.OrderIndex))
	if err := a.enc.RenderFrames(ctx, manifestPath, videoPath); err != nil {
		return "", err
	}
	if segment.Audio == nil {
		return videoPath, nil
	}

	muxedPath := filepath.Join(clipsDir, fmt.Sprintf("segment_%03d_audio.mp4", segment.OrderIndex))
	if err := a.enc.Mux(ctx, videoPath, segment.Audio.Path, muxedPath); err != nil {
		return "", err
	}
	return muxedPath, nil
}
