package reporter

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal, tracking
// one progress bar for chunks received during a run.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar

	cyan    *color.Color
	green   *color.Color
	yellow  *color.Color
	red     *color.Color
	magenta *color.Color
	bold    *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) bar() *progressbar.ProgressBar {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		r.progress = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("chunks"),
			progressbar.OptionSpinnerType(14),
		)
	}
	return r.progress
}

func (r *TerminalReporter) ChunkReceived(event ChunkEvent) {
	_ = r.bar().Add(1)
}

func (r *TerminalReporter) ChunkDroppedPreWarmup(event DroppedEvent) {
	fmt.Printf("  %s tidx=%d dropped pre-warmup (%s)\n", r.yellow.Sprint("›"), event.Tidx, event.Reason)
}

func (r *TerminalReporter) ChunkNormalized(event ChunkEvent) {
	// Routine per-chunk success; no terminal output beyond the progress bar.
}

func (r *TerminalReporter) ChunkDispatched(event DispatchedEvent) {
	// Routine per-chunk success; no terminal output beyond the progress bar.
}

func (r *TerminalReporter) GatherComplete(outcome GatherOutcome) {
	// Routine per-(task,chunk) success; no terminal output beyond the progress bar.
}

func (r *TerminalReporter) GatherFailed(failure GatherFailure) {
	fmt.Printf("  %s task=%s tidx=%d: %v\n", r.red.Sprint("✗"), failure.TaskName, failure.Tidx, failure.Err)
}

func (r *TerminalReporter) RunComplete(summary RunSummary) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.mu.Unlock()

	fmt.Println()
	_, _ = r.cyan.Println("RUN COMPLETE")
	r.printLabel("Run ID:", summary.RunID)
	r.printLabel("Received:", fmt.Sprintf("%d", summary.ChunksReceived))
	r.printLabel("Dropped:", fmt.Sprintf("%d", summary.ChunksDropped))
	r.printLabel("Processed:", fmt.Sprintf("%d", summary.ChunksProcessed))
	r.printLabel("Failures:", fmt.Sprintf("%d", summary.GatherFailures))
	r.printLabel("Duration:", summary.Duration.String())
}

func (r *TerminalReporter) printLabel(label, value string) {
	paddedLabel := fmt.Sprintf("%-11s", label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Printf("  %s %s\n", r.yellow.Sprint("!"), message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	fmt.Println()
	_, _ = r.red.Println(err.Title)
	fmt.Printf("  %s\n", err.Message)
	if err.Context != "" {
		fmt.Printf("  %s %s\n", r.bold.Sprint("context:"), err.Context)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("·"), message)
}
