package pipeline

import (
	"context"
	"os/exec"

	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/stage"
)

// Extract unpacks the source archive into the work directory and records
// the pages in reading order.
func (c *Coordinator) Extract(ctx context.Context) error {
	return c.run(ctx, c.extractStage())
}

func (c *Coordinator) extractStage() stageRunner {
	return stageRunner{
		name:       "extract",
		requires:   project.StageCreated,
		advancesTo: project.StageExtracted,
		execute:    c.executeExtract,
		health:     c.extractHealth,
	}
}

func (c *Coordinator) executeExtract(ctx context.Context, proj *project.Project) error {
	images, err := c.extractor.Extract(ctx, proj.SourcePath, project.PagesDir(c.workDir))
	if err != nil {
		return err
	}

	pages := make([]project.Page, len(images))
	for i, path := range images {
		pages[i] = project.Page{SourcePath: path, Index: i}
	}
	if err := c.store.AddPages(ctx, proj.ID, pages); err != nil {
		return err
	}
	c.logger.Info("pages extracted",
		logging.String(logging.FieldRunID, c.runID),
		logging.Int("pages", len(pages)))
	return nil
}

// CBZ extraction is in-process; unrar and 7z only matter for CBR sources,
// so their absence does not make the stage unhealthy.
func (c *Coordinator) extractHealth(context.Context) stage.Health {
	const name = "extract"
	if _, err := exec.LookPath(c.cfg.Archive.UnrarBinary); err == nil {
		return stage.Healthy(name)
	}
	if _, err := exec.LookPath(c.cfg.Archive.SevenZipBinary); err == nil {
		return stage.Healthy(name)
	}
	return stage.Health{Name: name, Ready: true, Detail: "CBR support unavailable (no unrar or 7z)"}
}
