// Package storage implements the run's persistence backend: writing run
// metadata once at startup and per-chunk analysis results as the pipeline
// produces them.
package storage

import (
	"time"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
)

// ResultInfo carries the bookkeeping fields that accompany a stored
// result: which task and chunk it belongs to, and when it was produced.
type ResultInfo struct {
	TaskName  string
	Tidx      int
	RunID     string
	Timestamp time.Time
}

// Adapter is the StorageAdapter contract. Implementations are chosen once
// at startup from config.Storage.Backend; there is no hot-swap.
type Adapter interface {
	// StoreMetadata writes the run's frozen config, UTC timestamp, and
	// serialized dispatch sequence, returning an opaque document id.
	StoreMetadata(cfg *config.Config, runID string, seq analysis.DispatchSequence) (docID string, err error)

	// StoreResult writes one (task, chunk) gathered result array, inline
	// or as a blob, plus an index record.
	StoreResult(result analysis.Result, info ResultInfo) error

	// Close releases any resources the adapter holds (connections, open
	// files). It is called once, during pipeline drain.
	Close() error
}

// New selects and constructs an Adapter from cfg.Storage.Backend.
func New(cfg config.Storage) (Adapter, error) {
	switch cfg.Backend {
	case config.StorageNull, "":
		return NullAdapter{}, nil
	case config.StorageNumpy:
		return NewNumpyAdapter(cfg.Datadir)
	case config.StorageMongo:
		return NewDocstoreAdapter(cfg.Datastore)
	default:
		return nil, unknownBackendError(cfg.Backend)
	}
}
