package executor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitAndGatherPreservesOrder(t *testing.T) {
	p := New(2)
	defer p.Shutdown(true)

	futures := make([]*Future[int], 5)
	for i := 0; i < 5; i++ {
		i := i
		futures[i] = Submit(p, func() (int, error) { return i * i, nil })
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results, err := Gather(ctx, futures)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for i, v := range results {
		if v != i*i {
			t.Errorf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestGatherFailsFastOnError(t *testing.T) {
	p := New(4)
	defer p.Shutdown(true)

	wantErr := errors.New("kernel exploded")
	futures := []*Future[int]{
		Submit(p, func() (int, error) { return 1, nil }),
		Submit(p, func() (int, error) { return 0, wantErr }),
		Submit(p, func() (int, error) { return 3, nil }),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Gather(ctx, futures)
	if err == nil {
		t.Fatal("expected Gather to fail")
	}
}

func TestShutdownWaitsForInFlightWork(t *testing.T) {
	p := New(1)
	done := make(chan struct{})
	Submit(p, func() (int, error) {
		close(done)
		return 0, nil
	})
	p.Shutdown(true)
	select {
	case <-done:
	default:
		t.Fatal("expected submitted job to have run before Shutdown returned")
	}
}
