package stage

import (
	"context"

	"github.com/zachdrouin/ComicAlive/internal/project"
)

// Handler describes the contract the pipeline coordinator needs from each
// stage.
type Handler interface {
	// Prepare validates preconditions without mutating the project.
	Prepare(context.Context, *project.Project) error
	// Execute performs the stage's work and appends its artifacts.
	Execute(context.Context, *project.Project) error
	// HealthCheck reports whether the stage's collaborators are usable.
	HealthCheck(context.Context) Health
}
