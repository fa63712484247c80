package pipeline

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
	"github.com/zachdrouin/ComicAlive/internal/stage"
)

// Assemble builds the segment order from the stored clips and hands it to
// the assembler. An empty outputPath derives the video name from the source
// archive inside the configured output directory.
func (c *Coordinator) Assemble(ctx context.Context, outputPath string) error {
	return c.run(ctx, c.assembleStage(outputPath))
}

func (c *Coordinator) assembleStage(outputPath string) stageRunner {
	return stageRunner{
		name:       "assemble",
		requires:   project.StageAudioed,
		advancesTo: project.StageRendered,
		execute: func(ctx context.Context, proj *project.Project) error {
			return c.executeAssemble(ctx, proj, outputPath)
		},
		health: c.assembleHealth,
	}
}

func (c *Coordinator) assembleHealth(context.Context) stage.Health {
	const name = "assemble"
	if _, err := exec.LookPath(c.cfg.FFmpeg.Binary); err != nil {
		return stage.Unhealthy(name, "ffmpeg binary not found")
	}
	return stage.Healthy(name)
}

func (c *Coordinator) executeAssemble(ctx context.Context, proj *project.Project, outputPath string) error {
	clips, err := c.store.Clips(ctx, proj.ID)
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		return services.Wrap(services.ErrEmptyInput, "assemble", "plan",
			"no animated panels to assemble", nil)
	}
	audio, err := c.store.AudioClips(ctx, proj.ID)
	if err != nil {
		return err
	}

	// Clips were stored in play order: each transition directly before the
	// panel it leads into. Audio attaches to panel clips only.
	segments := make([]project.Segment, 0, len(clips))
	for i, clip := range clips {
		segment := project.Segment{OrderIndex: i, Clip: clip}
		if clip.Kind != project.ClipTransition {
			if track, ok := audio[clip.RegionID]; ok {
				segment.Audio = &track
			}
		}
		segments = append(segments, segment)
	}

	if outputPath == "" {
		outputPath = defaultOutputPath(c.cfg.Paths.OutputDir, proj.SourcePath)
	}
	if err := c.assembler.Assemble(ctx, segments, project.ClipsDir(c.workDir), outputPath); err != nil {
		return err
	}
	c.logger.Info("video assembled",
		logging.String(logging.FieldRunID, c.runID),
		logging.Int("segments", len(segments)),
		logging.String("output", outputPath))
	return nil
}

func defaultOutputPath(outputDir, sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".mp4")
}
