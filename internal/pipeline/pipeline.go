// Package pipeline wires the receiver, queue, consumer, and executor into
// the processor's streaming-analysis core: a bounded producer/consumer
// pair that never lets storage or kernel latency stall chunk ingestion.
package pipeline

import (
	"time"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/channel"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/executor"
	"github.com/kstarfusion/delta/internal/normalize"
	"github.com/kstarfusion/delta/internal/queue"
	"github.com/kstarfusion/delta/internal/reporter"
	"github.com/kstarfusion/delta/internal/runcontext"
	"github.com/kstarfusion/delta/internal/stream"
	"github.com/kstarfusion/delta/internal/transport"
)

// DefaultQueueCapacity is used when a caller does not override it; it
// gives the producer and consumer enough slack to always overlap by at
// least one chunk without the producer blocking on a healthy consumer.
const DefaultQueueCapacity = 4

// Pipeline couples a Receiver and Consumer over one queue and one
// executor pool, both constructed from a frozen RunContext and Config.
type Pipeline struct {
	RC       *runcontext.RunContext
	Receiver *Receiver
	Consumer *Consumer
	Pool     *executor.Pool
	Reporter reporter.Reporter
}

// New builds a Pipeline reading from cons and dispatching tasks (already
// parsed from cfg.TaskList via BuildTasks) across workers concurrent
// kernel slots.
func New(rc *runcontext.RunContext, cons transport.Consumer, tasks []analysis.Task, rep reporter.Reporter, queueCapacity, workers int) *Pipeline {
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	cfg := rc.Cfg
	q := queue.New[stream.Chunk](queueCapacity)
	pool := executor.New(workers)

	channels := channel.TotalChannels(cfg.Diagnostic.DataSource.ChannelRange)

	var tStart, tEnd float64
	if len(cfg.Diagnostic.Parameters.TriggerTime) >= 2 {
		tStart = cfg.Diagnostic.Parameters.TriggerTime[0]
		tEnd = cfg.Diagnostic.Parameters.TriggerTime[1]
	}

	var tNorm0, tNorm1 float64
	if len(cfg.Diagnostic.Parameters.TNorm) >= 2 {
		tNorm0 = cfg.Diagnostic.Parameters.TNorm[0]
		tNorm1 = cfg.Diagnostic.Parameters.TNorm[1]
	}

	receiver := &Receiver{
		Transport:       cons,
		VariableName:    variableName(cfg),
		Channels:        channels,
		SamplesPerChunk: cfg.Diagnostic.DataSource.ChunkSize,
		FSample:         cfg.Diagnostic.Parameters.FSampleHz(),
		TStart:          tStart,
		TEnd:            tEnd,
		Normalizer:      normalize.New(tNorm0, tNorm1),
		Queue:           q,
		Reporter:        rep,
	}

	consumer := &Consumer{
		Queue: q,
		Params: stream.Params{
			NFFT:           cfg.FFTParams.NFFT,
			Window:         cfg.FFTParams.Window,
			Hop:            cfg.FFTParams.Hop(),
			Detrend:        cfg.FFTParams.Detrend,
			FSample:        cfg.FFTParams.FSample,
			NormalizeScale: cfg.FFTParams.NormalizeScale,
		},
		Tasks:    tasks,
		Pool:     pool,
		Storage:  rc.Storage,
		Reporter: rep,
		RunID:    rc.RunID,
	}

	return &Pipeline{RC: rc, Receiver: receiver, Consumer: consumer, Pool: pool, Reporter: rep}
}

// variableName picks the single variable name the receiver reads per
// step. The generator/transport contract defines one variable for the
// configured channel range; its name is the range string itself.
func variableName(cfg *config.Config) string {
	if len(cfg.Diagnostic.DataSource.ChannelRange) > 0 {
		return cfg.Diagnostic.DataSource.ChannelRange[0]
	}
	return "data"
}

// Run starts the receiver on its own goroutine and drives the consumer
// on the caller's goroutine, draining fully before returning: the
// consumer finishes submitting, waits for every outstanding
// gather-and-store continuation, then the executor pool is shut down
// with wait=true and the storage adapter is closed. A transport error from the receiver is returned only
// after the consumer has fully drained.
func (p *Pipeline) Run() error {
	started := time.Now()

	recvErrCh := make(chan error, 1)
	go func() { recvErrCh <- p.Receiver.Run() }()

	consumerErr := p.Consumer.Run()
	p.Pool.Shutdown(true)
	if err := p.RC.Storage.Close(); err != nil {
		p.Reporter.Error(reporter.ReporterError{Title: "storage", Message: err.Error()})
	}
	recvErr := <-recvErrCh

	p.Reporter.RunComplete(reporter.RunSummary{
		RunID:           p.RC.RunID,
		ChunksReceived:  p.Receiver.Received,
		ChunksDropped:   p.Receiver.Dropped,
		ChunksProcessed: p.Consumer.Processed,
		GatherFailures:  int(p.Consumer.GatherFailures.Load()),
		Duration:        time.Since(started),
	})

	if recvErr != nil {
		return recvErr
	}
	return consumerErr
}
