package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter emits one NDJSON object per event, for downstream tooling
// that wants to consume the run as a structured event stream rather than
// parsing terminal text.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) ChunkReceived(event ChunkEvent) {
	r.write(map[string]interface{}{"type": "chunk_received", "tidx": event.Tidx, "timestamp": r.timestamp()})
}

func (r *JSONReporter) ChunkDroppedPreWarmup(event DroppedEvent) {
	r.write(map[string]interface{}{"type": "chunk_dropped", "tidx": event.Tidx, "reason": event.Reason, "timestamp": r.timestamp()})
}

func (r *JSONReporter) ChunkNormalized(event ChunkEvent) {
	r.write(map[string]interface{}{"type": "chunk_normalized", "tidx": event.Tidx, "timestamp": r.timestamp()})
}

func (r *JSONReporter) ChunkDispatched(event DispatchedEvent) {
	r.write(map[string]interface{}{"type": "chunk_dispatched", "tidx": event.Tidx, "task_count": event.TaskCount, "timestamp": r.timestamp()})
}

func (r *JSONReporter) GatherComplete(outcome GatherOutcome) {
	r.write(map[string]interface{}{
		"type": "gather_complete", "task": outcome.TaskName, "tidx": outcome.Tidx,
		"pairs": outcome.PairDone, "elapsed_ms": outcome.Elapsed.Milliseconds(), "timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) GatherFailed(failure GatherFailure) {
	r.write(map[string]interface{}{
		"type": "gather_failed", "task": failure.TaskName, "tidx": failure.Tidx,
		"error": failure.Err.Error(), "timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunSummary) {
	r.write(map[string]interface{}{
		"type": "run_complete", "run_id": summary.RunID,
		"chunks_received": summary.ChunksReceived, "chunks_dropped": summary.ChunksDropped,
		"chunks_processed": summary.ChunksProcessed, "gather_failures": summary.GatherFailures,
		"duration_ms": summary.Duration.Milliseconds(), "timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{"type": "warning", "message": message, "timestamp": r.timestamp()})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type": "error", "title": err.Title, "message": err.Message, "context": err.Context, "timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{"type": "verbose", "message": message, "timestamp": r.timestamp()})
}
