package pipeline

import (
	"github.com/kstarfusion/delta/internal/deltaerr"
	"github.com/kstarfusion/delta/internal/normalize"
	"github.com/kstarfusion/delta/internal/queue"
	"github.com/kstarfusion/delta/internal/reporter"
	"github.com/kstarfusion/delta/internal/stream"
	"github.com/kstarfusion/delta/internal/timebase"
	"github.com/kstarfusion/delta/internal/transport"
)

// Receiver is the producer half of the pipeline: it pulls ordered
// time-chunks from a transport stream, arms and applies the Normalizer,
// and enqueues the result for the consumer.
type Receiver struct {
	Transport       transport.Consumer
	VariableName    string
	Channels        int
	SamplesPerChunk int
	FSample         float64
	TStart, TEnd    float64
	Normalizer      *normalize.Normalizer
	Queue           *queue.Bounded[stream.Chunk]
	Reporter        reporter.Reporter

	Received int
	Dropped  int
}

// Run executes the receiver loop until the transport reports end of
// stream or fails. It always enqueues exactly one sentinel before
// returning, so the consumer is guaranteed to observe termination.
func (r *Receiver) Run() error {
	if err := r.Transport.Open(); err != nil {
		r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
		return deltaerr.NewTransportError("opening transport", err)
	}

	for {
		ok, err := r.Transport.BeginStep()
		if err != nil {
			r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
			return deltaerr.NewTransportError("BeginStep failed", err)
		}
		if !ok {
			r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
			return nil
		}

		buf := make([]float64, r.Channels*r.SamplesPerChunk)
		if err := r.Transport.Get(r.VariableName, buf); err != nil {
			r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
			return deltaerr.NewTransportError("Get failed", err)
		}

		tidx, err := r.Transport.CurrentStep()
		if err != nil {
			r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
			return deltaerr.NewTransportError("CurrentStep failed", err)
		}

		tb := timebase.New(r.TStart, r.TEnd, r.FSample, r.SamplesPerChunk, tidx)
		chunk := stream.NewChunk(r.Channels, r.SamplesPerChunk, buf, tb)
		r.Received++
		r.Reporter.ChunkReceived(reporter.ChunkEvent{Tidx: tidx})

		r.Normalizer.Observe(chunk)
		if !r.Normalizer.Armed() {
			r.Dropped++
			r.Reporter.ChunkDroppedPreWarmup(reporter.DroppedEvent{Tidx: tidx, Reason: "normalizer not armed"})
			if err := r.Transport.EndStep(); err != nil {
				r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
				return deltaerr.NewTransportError("EndStep failed", err)
			}
			continue
		}

		r.Normalizer.Apply(chunk)
		r.Reporter.ChunkNormalized(reporter.ChunkEvent{Tidx: tidx})
		r.Queue.Enqueue(queue.Chunk(tidx, chunk))

		if err := r.Transport.EndStep(); err != nil {
			r.Queue.Enqueue(queue.SentinelMessage[stream.Chunk]())
			return deltaerr.NewTransportError("EndStep failed", err)
		}
	}
}
