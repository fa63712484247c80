// Package pipeline orchestrates a conversion run. The coordinator owns the
// project store and walks the stage sequence Created through Rendered,
// delegating the work of each stage to the detection, animation, narration,
// and assembly collaborators. Stage order is enforced: an operation invoked
// out of turn fails without touching project state.
package pipeline
