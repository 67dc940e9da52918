// Package stream holds the Chunk and FFTChunk data types that flow through
// the pipeline: a time-domain (channels x samples) frame and its
// short-time Fourier transform (channels x bins x blocks).
package stream

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kstarfusion/delta/internal/timebase"
)

// Chunk is a (C x N) floating-point frame: C channels, N samples, paired
// with the TimeBase that maps its samples to physical time. A Chunk is
// created by the receiver from one transport frame, consumed by the STFT
// stage, and never mutated after creation except via the Normalizer's
// in-place Apply.
type Chunk struct {
	Data *mat.Dense
	TB   timebase.TimeBase
}

// NewChunk constructs a Chunk from row-major (C x N) sample data.
func NewChunk(channels, samples int, data []float64, tb timebase.TimeBase) Chunk {
	return Chunk{Data: mat.NewDense(channels, samples, data), TB: tb}
}

// Shape returns (channels, samples).
func (c Chunk) Shape() (channels, samples int) {
	return c.Data.Dims()
}

// Row returns a read view of one channel's samples across time. The
// returned slice aliases the Chunk's backing storage; callers must not
// retain it past the Chunk's lifetime if the Chunk is later mutated.
func (c Chunk) Row(channel int) []float64 {
	return c.Data.RawRowView(channel)
}
