// Package runcontext holds the process-wide state created once at
// startup and passed explicitly thereafter, instead of hidden globals.
package runcontext

import (
	"crypto/rand"

	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/logging"
	"github.com/kstarfusion/delta/internal/storage"
)

const runIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RunContext is the frozen, read-only record both the generator and
// processor build once and carry through every component they construct.
type RunContext struct {
	RunID   string
	Cfg     *config.Config
	Storage storage.Adapter
	Logger  *logging.Logger
}

// New builds a RunContext: generates a run_id, constructs the storage
// adapter named by cfg.Storage.Backend, and attaches run_id to logger.
func New(cfg *config.Config, logger *logging.Logger) (*RunContext, error) {
	runID, err := newRunID()
	if err != nil {
		return nil, err
	}

	adapter, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &RunContext{
		RunID:   runID,
		Cfg:     cfg,
		Storage: adapter,
		Logger:  logger.WithRunID(runID),
	}, nil
}

// newRunID generates a random 6-character token over a lowercase
// alphanumeric alphabet. No token-generation library is carried in the
// example corpus; crypto/rand plus a fixed alphabet is a few lines and
// needs nothing more.
func newRunID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, 6)
	for i, v := range b {
		out[i] = runIDAlphabet[int(v)%len(runIDAlphabet)]
	}
	return string(out), nil
}
