package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) ChunkReceived(event ChunkEvent) {
	for _, r := range c.reporters {
		r.ChunkReceived(event)
	}
}

func (c *CompositeReporter) ChunkDroppedPreWarmup(event DroppedEvent) {
	for _, r := range c.reporters {
		r.ChunkDroppedPreWarmup(event)
	}
}

func (c *CompositeReporter) ChunkNormalized(event ChunkEvent) {
	for _, r := range c.reporters {
		r.ChunkNormalized(event)
	}
}

func (c *CompositeReporter) ChunkDispatched(event DispatchedEvent) {
	for _, r := range c.reporters {
		r.ChunkDispatched(event)
	}
}

func (c *CompositeReporter) GatherComplete(outcome GatherOutcome) {
	for _, r := range c.reporters {
		r.GatherComplete(outcome)
	}
}

func (c *CompositeReporter) GatherFailed(failure GatherFailure) {
	for _, r := range c.reporters {
		r.GatherFailed(failure)
	}
}

func (c *CompositeReporter) RunComplete(summary RunSummary) {
	for _, r := range c.reporters {
		r.RunComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
