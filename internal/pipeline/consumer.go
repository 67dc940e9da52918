package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/dispatch"
	"github.com/kstarfusion/delta/internal/executor"
	"github.com/kstarfusion/delta/internal/queue"
	"github.com/kstarfusion/delta/internal/reporter"
	"github.com/kstarfusion/delta/internal/stft"
	"github.com/kstarfusion/delta/internal/storage"
	"github.com/kstarfusion/delta/internal/stream"
)

// Consumer is the single-threaded half of the pipeline: it dequeues
// normalized chunks, runs the STFT synchronously, then only submits
// kernel work to the executor — it never blocks on a chunk's results
// before starting the next one.
type Consumer struct {
	Queue    *queue.Bounded[stream.Chunk]
	Params   stream.Params
	Tasks    []analysis.Task
	Pool     *executor.Pool
	Storage  storage.Adapter
	Reporter reporter.Reporter
	RunID    string

	Processed      int
	GatherFailures atomic.Int64

	wg sync.WaitGroup
}

// Run dequeues chunks until the sentinel, dispatching every configured
// task per chunk without waiting for prior chunks' results, then blocks
// until every in-flight gather-and-store continuation has completed.
func (c *Consumer) Run() error {
	ctx := context.Background()

	for {
		msg := c.Queue.Dequeue()
		if msg.Sentinel {
			break
		}

		fftChunk, err := stft.Transform(msg.Value, c.Params)
		if err != nil {
			c.Reporter.Error(reporter.ReporterError{Title: "stft", Message: err.Error()})
			continue
		}

		for _, task := range c.Tasks {
			fut := dispatch.Submit(ctx, c.Pool, fftChunk, task, msg.Tidx)
			c.storeOnComplete(fut, task, msg.Tidx)
		}
		c.Processed++
		c.Reporter.ChunkDispatched(reporter.DispatchedEvent{Tidx: msg.Tidx, TaskCount: len(c.Tasks)})
	}

	c.wg.Wait()
	return nil
}

// storeOnComplete waits for one (task, chunk) gather on a dedicated
// goroutine, outside the pool, and forwards its results to storage. It
// runs via executor.Go for the same reason dispatch.gatherInto does: it
// must not occupy a worker slot while waiting on pool-submitted futures.
func (c *Consumer) storeOnComplete(fut *executor.Future[dispatch.GatherResult], task analysis.Task, tidx int) {
	c.wg.Add(1)
	executor.Go(func() (struct{}, error) {
		defer c.wg.Done()
		start := time.Now()

		gr, err := fut.Wait()
		if err != nil {
			c.GatherFailures.Add(1)
			c.Reporter.GatherFailed(reporter.GatherFailure{TaskName: task.Name, Tidx: tidx, Err: err})
			return struct{}{}, nil
		}

		c.Reporter.GatherComplete(reporter.GatherOutcome{
			TaskName: task.Name,
			Tidx:     tidx,
			PairDone: len(gr.Results),
			Elapsed:  time.Since(start),
		})

		for _, result := range gr.Results {
			info := storage.ResultInfo{TaskName: task.Name, Tidx: tidx, RunID: c.RunID, Timestamp: time.Now()}
			if err := c.Storage.StoreResult(result, info); err != nil {
				c.Reporter.Error(reporter.ReporterError{Title: "storage", Message: err.Error()})
			}
		}
		return struct{}{}, nil
	})
}
