package pipeline

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
)

// DetectRegions finds panels and speech bubbles on every page. Pages where
// nothing is detected fall back to a single whole-page panel when the config
// allows it.
func (c *Coordinator) DetectRegions(ctx context.Context) error {
	return c.run(ctx, c.detectStage())
}

func (c *Coordinator) detectStage() stageRunner {
	return stageRunner{
		name:       "detect",
		requires:   project.StageExtracted,
		advancesTo: project.StageDetected,
		execute:    c.executeDetect,
	}
}

func (c *Coordinator) executeDetect(ctx context.Context, proj *project.Project) error {
	pages, err := c.store.Pages(ctx, proj.ID)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return services.Wrap(services.ErrEmptyInput, "detect", "load pages", "project has no pages", nil)
	}

	panelTotal := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := imaging.Load(page.SourcePath)
		if err != nil {
			return fmt.Errorf("page %d: %w", page.Index, err)
		}

		boxes := c.detector.Detect(img)
		if len(boxes) == 0 {
			if !c.cfg.Detection.WholePageFallback {
				c.logger.Warn("no panels on page", logging.Int(logging.FieldPage, page.Index))
				continue
			}
			bounds := img.Bounds()
			boxes = []imaging.Rect{{W: bounds.Dx(), H: bounds.Dy()}}
		}

		for _, box := range boxes {
			crop := imaging.Crop(img, box)
			panelID, err := c.store.AddRegion(ctx, proj.ID, project.Region{
				Kind:      project.RegionPanel,
				Box:       box,
				PageIndex: page.Index,
				Text:      c.panelText(ctx, crop),
			})
			if err != nil {
				return err
			}
			panelTotal++

			if err := c.detectBubbles(ctx, proj.ID, panelID, page.Index, crop); err != nil {
				return err
			}
		}
		c.emit("detect", 100*float64(page.Index+1)/float64(len(pages)),
			fmt.Sprintf("page %d/%d", page.Index+1, len(pages)))
	}

	c.logger.Info("regions detected",
		logging.String(logging.FieldRunID, c.runID),
		logging.Int("panels", panelTotal))
	return nil
}

// panelText recognizes caption and narration text across the whole panel.
// Captions sit outside speech bubbles, so the panel keeps its own text next
// to whatever the bubbles yield.
func (c *Coordinator) panelText(ctx context.Context, panelImg image.Image) string {
	if c.ocr == nil {
		return ""
	}
	text, err := c.ocr.ExtractText(ctx, panelImg)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// detectBubbles records the panel's speech bubbles. With OCR available the
// bubbles carry recognized text and textless ones are dropped; without it
// the bubble geometry is still stored.
func (c *Coordinator) detectBubbles(ctx context.Context, projectID, panelID int64, pageIndex int, panelImg image.Image) error {
	if c.ocr != nil {
		for _, region := range c.bubbles.FindText(ctx, panelImg, c.ocr) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := c.store.AddRegion(ctx, projectID, project.Region{
				Kind:      project.RegionBubble,
				Box:       region.Box,
				ParentID:  panelID,
				PageIndex: pageIndex,
				Text:      region.Text,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	for _, box := range c.bubbles.Detect(panelImg) {
		if _, err := c.store.AddRegion(ctx, projectID, project.Region{
			Kind:      project.RegionBubble,
			Box:       box,
			ParentID:  panelID,
			PageIndex: pageIndex,
		}); err != nil {
			return err
		}
	}
	return nil
}
