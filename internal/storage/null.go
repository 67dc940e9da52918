package storage

import (
	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
)

// NullAdapter discards every write. It is the default backend and is used
// in tests that don't care about persistence.
type NullAdapter struct{}

func (NullAdapter) StoreMetadata(*config.Config, string, analysis.DispatchSequence) (string, error) {
	return "", nil
}

func (NullAdapter) StoreResult(analysis.Result, ResultInfo) error { return nil }

func (NullAdapter) Close() error { return nil }
