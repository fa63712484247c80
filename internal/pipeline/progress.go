package pipeline

// Progress is an observer event emitted while a stage works. Events are
// best-effort: a slow consumer drops events rather than stalling the run.
type Progress struct {
	Stage   string
	Percent float64
	Message string
}

func (c *Coordinator) emit(stage string, percent float64, message string) {
	select {
	case c.events <- Progress{Stage: stage, Percent: percent, Message: message}:
	default:
	}
}

// Events exposes the progress stream. The channel is closed by Close.
func (c *Coordinator) Events() <-chan Progress {
	return c.events
}
