package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/deltaerr"
)

// DocstoreAdapter is the "mongo"-named backend. In this workspace it is
// backed by a real Redis instance (github.com/redis/go-redis/v9) rather
// than an actual MongoDB driver: the document shapes below (one JSON blob
// per run, one JSON blob per result, indexed by run_id) are the same
// whichever document store sits underneath, and Redis gives a running
// process without an external dependency to stand up.
type DocstoreAdapter struct {
	client *redis.Client
	ctx    context.Context
}

// NewDocstoreAdapter configures a client for addr and returns the adapter. The
// connection is established lazily by the client on first command; no
// round trip happens here.
func NewDocstoreAdapter(addr string) (*DocstoreAdapter, error) {
	if addr == "" {
		return nil, deltaerr.NewConfigError("storage.datastore is required for the mongo backend")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &DocstoreAdapter{client: client, ctx: context.Background()}, nil
}

type metadataDoc struct {
	RunID     string                    `json:"run_id"`
	Timestamp time.Time                 `json:"timestamp"`
	Config    *config.Config            `json:"config"`
	Sequence  analysis.DispatchSequence `json:"dispatch_sequence"`
}

func (a *DocstoreAdapter) StoreMetadata(cfg *config.Config, runID string, seq analysis.DispatchSequence) (string, error) {
	doc := metadataDoc{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Config:    cfg,
		Sequence:  seq,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", deltaerr.NewBackendError("marshaling run metadata", err)
	}

	key := metadataKey(runID)
	if err := a.client.Set(a.ctx, key, payload, 0).Err(); err != nil {
		return "", deltaerr.NewBackendError("writing run metadata to docstore", err)
	}
	return key, nil
}

type resultDoc struct {
	TaskName  string    `json:"task_name"`
	Tidx      int       `json:"tidx"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Shape     int       `json:"shape"`
	Dims      []int     `json:"dims"`
	Data      []float64 `json:"data"`
}

func (a *DocstoreAdapter) StoreResult(result analysis.Result, info ResultInfo) error {
	doc := resultDoc{
		TaskName:  info.TaskName,
		Tidx:      info.Tidx,
		RunID:     info.RunID,
		Timestamp: info.Timestamp,
		Shape:     int(result.Shape),
		Dims:      result.Dims,
		Data:      result.Data,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return deltaerr.NewBackendError("marshaling result document", err)
	}

	key := resultKey(info.RunID, info.TaskName, info.Tidx)
	pipe := a.client.TxPipeline()
	pipe.Set(a.ctx, key, payload, 0)
	pipe.SAdd(a.ctx, resultIndexKey(info.RunID), key)
	if _, err := pipe.Exec(a.ctx); err != nil {
		return deltaerr.NewBackendError("writing result to docstore", err)
	}
	return nil
}

func (a *DocstoreAdapter) Close() error {
	return a.client.Close()
}

func metadataKey(runID string) string {
	return fmt.Sprintf("delta:run:%s:metadata", runID)
}

func resultKey(runID, taskName string, tidx int) string {
	return fmt.Sprintf("delta:run:%s:result:%s:%d", runID, taskName, tidx)
}

func resultIndexKey(runID string) string {
	return fmt.Sprintf("delta:run:%s:results", runID)
}
