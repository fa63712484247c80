package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zachdrouin/ComicAlive/internal/animate"
	"github.com/zachdrouin/ComicAlive/internal/imaging"
	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
)

// Animate renders a motion clip per panel plus a transition clip bridging
// each consecutive pair. Panels are rendered in parallel; a panel whose
// effect fails keeps its slot with a single still frame instead of aborting
// the stage.
func (c *Coordinator) Animate(ctx context.Context) error {
	return c.run(ctx, c.animateStage())
}

func (c *Coordinator) animateStage() stageRunner {
	return stageRunner{
		name:       "animate",
		requires:   project.StageDetected,
		advancesTo: project.StageAnimated,
		execute:    c.executeAnimate,
	}
}

type animateResult struct {
	transition *project.AnimationClip // precedes the panel clip, nil for panel 0
	panel      *project.AnimationClip
}

func (c *Coordinator) executeAnimate(ctx context.Context, proj *project.Project) error {
	panels, err := c.store.Panels(ctx, proj.ID)
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		c.logger.Warn("no panels to animate", logging.String(logging.FieldRunID, c.runID))
		return nil
	}

	pages, err := c.store.Pages(ctx, proj.ID)
	if err != nil {
		return err
	}
	pagePaths := make(map[int]string, len(pages))
	for _, page := range pages {
		pagePaths[page.Index] = page.SourcePath
	}

	speed := c.cfg.Animation.SpeedFactor
	panelDur := time.Duration(c.cfg.Animation.PanelDuration / speed * float64(time.Second))
	transDur := time.Duration(c.cfg.Animation.TransitionDuration / speed * float64(time.Second))
	style := animate.Style(c.cfg.Animation.Style)
	transitionKind := animate.TransitionKind(c.cfg.Animation.TransitionKind)
	frameSeconds := 1.0 / float64(c.cfg.Animation.FPS)

	results := make([]animateResult, len(panels))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Workflow.Workers)
	for i := range panels {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			// Each panel gets its own seeded source so clip content is
			// reproducible regardless of worker scheduling.
			synth := animate.NewSynthesizer(c.cfg.Animation.FPS, c.baseSeed+int64(i))

			panel := panels[i]
			pageImg, crop, err := c.loadPanel(pagePaths, panel)
			if err != nil {
				return err
			}

			clip, err := c.renderPanelClip(synth, style, panel, pageImg, crop, panelDur, frameSeconds, i)
			if err != nil {
				return err
			}
			results[i].panel = clip

			if i == 0 {
				return nil
			}
			_, prevCrop, err := c.loadPanel(pagePaths, panels[i-1])
			if err != nil {
				return err
			}
			results[i].transition = c.renderTransitionClip(
				synth, transitionKind, panel, prevCrop, crop, transDur, frameSeconds, i)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for i, result := range results {
		if result.transition != nil {
			if _, err := c.store.AddClip(ctx, proj.ID, *result.transition); err != nil {
				return err
			}
		}
		if _, err := c.store.AddClip(ctx, proj.ID, *result.panel); err != nil {
			return err
		}
		c.emit("animate", 100*float64(i+1)/float64(len(results)),
			fmt.Sprintf("panel %d/%d", i+1, len(results)))
	}

	c.logger.Info("panels animated",
		logging.String(logging.FieldRunID, c.runID),
		logging.Int("panels", len(panels)))
	return nil
}

func (c *Coordinator) loadPanel(pagePaths map[int]string, panel project.Region) (image.Image, *image.RGBA, error) {
	path, ok := pagePaths[panel.PageIndex]
	if !ok {
		return nil, nil, fmt.Errorf("panel %d references unknown page %d", panel.ID, panel.PageIndex)
	}
	img, err := imaging.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("page %d: %w", panel.PageIndex, err)
	}
	return img, imaging.Crop(img, panel.Box), nil
}

// renderPanelClip runs the panel's motion effect, degrading to a still frame
// covering the same duration when the effect fails.
func (c *Coordinator) renderPanelClip(
	synth *animate.Synthesizer,
	style animate.Style,
	panel project.Region,
	pageImg image.Image,
	crop *image.RGBA,
	duration time.Duration,
	frameSeconds float64,
	index int,
) (*project.AnimationClip, error) {
	dir := filepath.Join(project.FramesDir(c.workDir), fmt.Sprintf("panel_%03d", index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	var (
		frames []string
		kind   project.ClipKind
		err    error
	)
	switch synth.PickStyle(style) {
	case animate.StyleKenBurns:
		kind = project.ClipKenBurns
		frames, err = synth.KenBurns(crop, duration, dir)
	default:
		kind = project.ClipPanScan
		box := panel.Box
		frames, err = synth.PanScan(pageImg, &box, duration, dir)
	}
	if err == nil {
		return &project.AnimationClip{
			RegionID: panel.ID, Kind: kind, Frames: frames, FrameDuration: frameSeconds,
		}, nil
	}

	c.logger.Warn("panel effect failed, keeping still frame",
		logging.Int("panel", index), logging.Error(err))
	frames, err = synth.Still(crop, dir)
	if err != nil {
		return nil, err
	}
	return &project.AnimationClip{
		RegionID: panel.ID, Kind: kind, Frames: frames, FrameDuration: duration.Seconds(),
	}, nil
}

// renderTransitionClip bridges the previous panel into this one. Failures
// degrade to a still of the incoming panel so the slot is never empty.
func (c *Coordinator) renderTransitionClip(
	synth *animate.Synthesizer,
	kind animate.TransitionKind,
	panel project.Region,
	prevCrop, crop *image.RGBA,
	duration time.Duration,
	frameSeconds float64,
	index int,
) *project.AnimationClip {
	dir := filepath.Join(project.FramesDir(c.workDir), fmt.Sprintf("transition_%03d", index))
	if err := os.MkdirAll(dir, 0o755); err == nil {
		if frames, err := synth.Transition(prevCrop, crop, kind, duration, dir); err == nil {
			return &project.AnimationClip{
				RegionID: panel.ID, Kind: project.ClipTransition,
				Frames: frames, FrameDuration: frameSeconds,
			}
		} else {
			c.logger.Warn("transition failed, keeping still frame",
				logging.Int("panel", index), logging.Error(err))
		}
		if frames, err := synth.Still(crop, dir); err == nil {
			return &project.AnimationClip{
				RegionID: panel.ID, Kind: project.ClipTransition,
				Frames: frames, FrameDuration: duration.Seconds(),
			}
		}
	}
	return nil
}
