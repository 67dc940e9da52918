// Package dispatch expands one AnalysisTask into its ordered per-chunk pair
// sequence and submits each pair to the executor pool.
package dispatch

import (
	"context"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/executor"
	"github.com/kstarfusion/delta/internal/stream"
)

// GatherResult is what a Submit call's future resolves to: the stacked,
// dispatch-ordered results for one (task, chunk).
type GatherResult struct {
	Task     analysis.Task
	Tidx     int
	Results  []analysis.Result
	Sequence analysis.TaskSequence
}

// Submit expands task.RefRange x task.CrossRange into the ref-major,
// cross-minor pair sequence, submits one kernel call per pair to pool, and
// returns a future for the gathered, order-preserved results. skw is
// dispatched once per reference channel (against the whole cross range)
// rather than once per pair, since its spatial transform needs every
// cross channel at once.
func Submit(ctx context.Context, pool *executor.Pool, fft stream.FFTChunk, task analysis.Task, tidx int) *executor.Future[GatherResult] {
	if task.Kind == analysis.KindSKW {
		return submitSKW(ctx, pool, fft, task, tidx)
	}

	pairs := task.Pairs()
	futures := make([]*executor.Future[analysis.Result], len(pairs))
	for i, pair := range pairs {
		pair := pair
		futures[i] = executor.Submit(pool, func() (analysis.Result, error) {
			return analysis.Compute(task.Kind, fft, pair.Ref.Idx(), pair.Cross.Idx(), task.PerBin)
		})
	}

	return gatherInto(ctx, futures, task, tidx)
}

func submitSKW(ctx context.Context, pool *executor.Pool, fft stream.FFTChunk, task analysis.Task, tidx int) *executor.Future[GatherResult] {
	refs := task.RefRange.Iter()
	crosses := task.CrossRange.Iter()
	crossIdxs := make([]int, len(crosses))
	for i, c := range crosses {
		crossIdxs[i] = c.Idx()
	}

	futures := make([]*executor.Future[analysis.Result], len(refs))
	for i, ref := range refs {
		ref := ref
		futures[i] = executor.Submit(pool, func() (analysis.Result, error) {
			return analysis.ComputeSKW(fft, ref.Idx(), crossIdxs), nil
		})
	}

	return gatherInto(ctx, futures, task, tidx)
}

// gatherInto runs a dedicated goroutine that waits for every pair future
// via executor.Gather and resolves the returned future as soon as every
// pair has arrived or one fails, whichever comes first. A fast failure at
// a late pair index is observed immediately rather than after every
// earlier pair has also resolved. It runs outside the worker pool so it
// cannot itself occupy a worker slot while waiting on pool-submitted
// futures.
func gatherInto(ctx context.Context, futures []*executor.Future[analysis.Result], task analysis.Task, tidx int) *executor.Future[GatherResult] {
	out := executor.Go(func() (GatherResult, error) {
		results, err := executor.Gather(ctx, futures)
		if err != nil {
			return GatherResult{}, err
		}
		return GatherResult{
			Task:     task,
			Tidx:     tidx,
			Results:  results,
			Sequence: analysis.BuildTaskSequence(task),
		}, nil
	})
	return out
}
