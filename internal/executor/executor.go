// Package executor provides the bounded worker pool that runs analysis
// kernels concurrently.
package executor

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Future is a handle to a value produced by a goroutine running in a Pool.
// Wait blocks until the value is ready.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

// Wait blocks until the future resolves and returns its value or error.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Go runs fn on a plain goroutine, outside the pool's bounded worker set,
// and returns a Future for its result. It exists for coordination work
// that itself waits on pool-submitted futures (e.g. a per-chunk gather):
// such work must never occupy a worker slot, or it can deadlock a pool
// whose capacity is smaller than its number of in-flight gathers.
func Go[T any](fn func() (T, error)) *Future[T] {
	fut := newFuture[T]()
	go func() {
		v, err := fn()
		fut.resolve(v, err)
	}()
	return fut
}

var (
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "delta_executor_queue_depth",
		Help: "Number of kernel invocations waiting for a free worker.",
	})
	activeWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "delta_executor_active_workers",
		Help: "Number of workers currently executing a kernel invocation.",
	})
	kernelFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_executor_kernel_failures_total",
		Help: "Total analysis kernel invocations that returned an error.",
	})
)

func init() {
	prometheus.MustRegister(queueDepth, activeWorkers, kernelFailuresTotal)
}

// job is a type-erased unit of work; Pool is generic over the future's
// result type but a single job channel must carry jobs for every T
// submitted to the pool, so the closure captures resolution.
type job struct {
	run func()
}

// Pool is a fixed-size worker pool: W goroutines pull jobs off a shared
// channel until Shutdown is called.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

// New starts a Pool with workers goroutines.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{jobs: make(chan job, workers*4)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for j := range p.jobs {
		activeWorkers.Inc()
		j.run()
		activeWorkers.Dec()
	}
}

// Submit schedules fn to run on a free worker and returns a Future for its
// result.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	fut := newFuture[T]()
	queueDepth.Inc()
	p.jobs <- job{run: func() {
		queueDepth.Dec()
		v, err := fn()
		if err != nil {
			kernelFailuresTotal.Inc()
		}
		fut.resolve(v, err)
	}}
	return fut
}

// Gather blocks until every future in futures resolves, or until ctx is
// cancelled. It returns the results in dispatch order if all succeed, or
// the first error to arrive (fail-fast, not necessarily the first in
// dispatch order): kernels are pure CPU and cannot be interrupted
// mid-flight, so siblings keep running but their results are discarded.
func Gather[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	type arrival struct {
		idx int
		err error
	}
	arrivals := make(chan arrival, len(futures))
	for i, f := range futures {
		i, f := i, f
		go func() {
			_, err := f.Wait()
			arrivals <- arrival{idx: i, err: err}
		}()
	}

	out := make([]T, len(futures))
	remaining := len(futures)
	for remaining > 0 {
		select {
		case a := <-arrivals:
			if a.err != nil {
				return nil, a.err
			}
			out[a.idx] = futures[a.idx].value
			remaining--
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// Shutdown closes the job queue. If wait is true it blocks until every
// worker has drained the queue and exited.
func (p *Pool) Shutdown(wait bool) {
	close(p.jobs)
	if wait {
		p.wg.Wait()
	}
}
