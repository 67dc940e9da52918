package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/channel"
	"github.com/kstarfusion/delta/internal/executor"
	"github.com/kstarfusion/delta/internal/stream"
	"github.com/kstarfusion/delta/internal/timebase"
)

func twoChannelFFT(t *testing.T, channels int) stream.FFTChunk {
	t.Helper()
	const bins, blocks = 4, 2
	blocksData := make([]*mat.CDense, channels)
	for c := 0; c < channels; c++ {
		cd := mat.NewCDense(bins, blocks, nil)
		for f := 0; f < bins; f++ {
			for b := 0; b < blocks; b++ {
				cd.Set(f, b, complex(float64(c+1), 0))
			}
		}
		blocksData[c] = cd
	}
	tb := timebase.New(0, 1, 1000, 100, 0)
	return stream.FFTChunk{Blocks: blocksData, TB: tb, Params: stream.Params{NFFT: 8}}
}

func rangeOf(t *testing.T, s string) channel.Range {
	t.Helper()
	r, err := channel.ParseRange(s)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", s, err)
	}
	return r
}

func TestSubmitResultCountMatchesPairCount(t *testing.T) {
	pool := executor.New(4)
	defer pool.Shutdown(true)

	// Channel grid is indexed (V-1)*MaxH+(H-1); use a small contiguous
	// slice of the grid so indices stay within the FFTChunk's channel count.
	task := analysis.Task{
		Name:       "coh",
		Kind:       analysis.KindCoherence,
		RefRange:   rangeOf(t, "L0101-L0101"),
		CrossRange: rangeOf(t, "L0101-L0102"),
	}
	fft := twoChannelFFT(t, 8)

	fut := Submit(context.Background(), pool, fft, task, 7)
	res, err := fut.Wait()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := task.RefRange.Len() * task.CrossRange.Len()
	if len(res.Results) != want {
		t.Errorf("len(Results) = %d, want %d", len(res.Results), want)
	}
	if res.Tidx != 7 {
		t.Errorf("Tidx = %d, want 7", res.Tidx)
	}
}

func TestSubmitDoesNotDeadlockWithSingleWorker(t *testing.T) {
	pool := executor.New(1)
	defer pool.Shutdown(true)

	task := analysis.Task{
		Name:       "coh",
		Kind:       analysis.KindCoherence,
		RefRange:   rangeOf(t, "L0101-L0102"),
		CrossRange: rangeOf(t, "L0101-L0102"),
	}
	fft := twoChannelFFT(t, 4)

	fut := Submit(context.Background(), pool, fft, task, 0)
	if _, err := fut.Wait(); err != nil {
		t.Fatalf("Submit with pool capacity 1: %v", err)
	}
}

func TestSubmitSKWDispatchesOncePerRefChannel(t *testing.T) {
	pool := executor.New(2)
	defer pool.Shutdown(true)

	task := analysis.Task{
		Name:       "skw",
		Kind:       analysis.KindSKW,
		RefRange:   rangeOf(t, "L0101-L0102"),
		CrossRange: rangeOf(t, "L0101-L0103"),
	}
	fft := twoChannelFFT(t, 8)

	fut := Submit(context.Background(), pool, fft, task, 0)
	res, err := fut.Wait()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(res.Results) != task.RefRange.Len() {
		t.Errorf("len(Results) = %d, want %d (one per ref channel)", len(res.Results), task.RefRange.Len())
	}
}

// TestGatherIntoReportsFirstArrivalNotFirstIndex plants the failure at the
// last pair index while the earlier pairs are still slow in flight. A
// sequential index-ordered wait would block on every earlier pair before
// ever observing it; gatherInto must return as soon as the failure
// arrives, long before the slow earlier pairs resolve.
func TestGatherIntoReportsFirstArrivalNotFirstIndex(t *testing.T) {
	pool := executor.New(4)
	defer pool.Shutdown(true)

	wantErr := errors.New("late pair failed fast")
	slow := func() (analysis.Result, error) {
		time.Sleep(200 * time.Millisecond)
		return analysis.Result{}, nil
	}
	fastFail := func() (analysis.Result, error) {
		time.Sleep(5 * time.Millisecond)
		return analysis.Result{}, wantErr
	}

	futures := []*executor.Future[analysis.Result]{
		executor.Submit(pool, slow),
		executor.Submit(pool, slow),
		executor.Submit(pool, fastFail),
	}

	task := analysis.Task{Name: "coh", Kind: analysis.KindCoherence}
	started := time.Now()
	fut := gatherInto(context.Background(), futures, task, 0)
	_, err := fut.Wait()
	elapsed := time.Since(started)

	if !errors.Is(err, wantErr) {
		t.Fatalf("gatherInto error = %v, want %v", err, wantErr)
	}
	if elapsed >= 100*time.Millisecond {
		t.Fatalf("gatherInto took %v, want well under the slow pairs' 200ms (first-arrival fail-fast did not trigger)", elapsed)
	}
}
