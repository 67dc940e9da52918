package reporter

// Reporter defines the interface for pipeline progress reporting.
type Reporter interface {
	ChunkReceived(event ChunkEvent)
	ChunkDroppedPreWarmup(event DroppedEvent)
	ChunkNormalized(event ChunkEvent)
	ChunkDispatched(event DispatchedEvent)
	GatherComplete(outcome GatherOutcome)
	GatherFailed(failure GatherFailure)
	RunComplete(summary RunSummary)
	Warning(message string)
	Error(err ReporterError)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) ChunkReceived(ChunkEvent)           {}
func (NullReporter) ChunkDroppedPreWarmup(DroppedEvent) {}
func (NullReporter) ChunkNormalized(ChunkEvent)         {}
func (NullReporter) ChunkDispatched(DispatchedEvent)    {}
func (NullReporter) GatherComplete(GatherOutcome)       {}
func (NullReporter) GatherFailed(GatherFailure)         {}
func (NullReporter) RunComplete(RunSummary)             {}
func (NullReporter) Warning(string)                     {}
func (NullReporter) Error(ReporterError)                {}
func (NullReporter) Verbose(string)                     {}
