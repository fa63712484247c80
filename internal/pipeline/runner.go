package pipeline

import (
	"context"
	"fmt"

	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
	"github.com/zachdrouin/ComicAlive/internal/stage"
)

// stageRunner adapts one pipeline stage to the stage.Handler contract.
// Prepare enforces the stage-order precondition without mutating anything;
// Execute does the work; the coordinator advances the stage marker after a
// successful Execute.
type stageRunner struct {
	name       string
	requires   project.Stage
	advancesTo project.Stage
	execute    func(context.Context, *project.Project) error
	health     func(context.Context) stage.Health
}

var _ stage.Handler = stageRunner{}

func (r stageRunner) Prepare(_ context.Context, proj *project.Project) error {
	if proj == nil {
		return services.Wrap(services.ErrPipelineState, r.name, "prepare", "no open project", nil)
	}
	if proj.Stage != r.requires {
		return services.Wrap(services.ErrPipelineState, r.name, "prepare",
			fmt.Sprintf("project at stage %q, %s requires %q", proj.Stage, r.name, r.requires), nil)
	}
	return nil
}

func (r stageRunner) Execute(ctx context.Context, proj *project.Project) error {
	return r.execute(ctx, proj)
}

func (r stageRunner) HealthCheck(ctx context.Context) stage.Health {
	if r.health == nil {
		return stage.Healthy(r.name)
	}
	return r.health(ctx)
}

// run drives one stage through the handler contract and advances the stage
// marker on success.
func (c *Coordinator) run(ctx context.Context, runner stageRunner) error {
	if err := runner.Prepare(ctx, c.proj); err != nil {
		return err
	}
	c.emit(runner.name, 0, "starting")
	if err := runner.Execute(ctx, c.proj); err != nil {
		return err
	}
	if err := c.store.AdvanceStage(ctx, c.proj.ID, runner.advancesTo); err != nil {
		return err
	}
	c.proj.Stage = runner.advancesTo
	c.emit(runner.name, 100, "done")
	return nil
}
