// Package timebase maps between sample index and physical time for one
// chunk of a streaming time series.
package timebase

import "math"

// TimeBase is a pure function object: given the tuple (t_start, t_end,
// f_sample, samples_per_chunk, chunk_idx), it maps sample index <-> time
// for exactly the window covered by chunk_idx.
type TimeBase struct {
	TStart          float64
	TEnd            float64
	FSample         float64
	SamplesPerChunk int
	ChunkIdx        int
}

// New constructs a TimeBase for the given chunk index.
func New(tStart, tEnd, fSample float64, samplesPerChunk, chunkIdx int) TimeBase {
	return TimeBase{
		TStart:          tStart,
		TEnd:            tEnd,
		FSample:         fSample,
		SamplesPerChunk: samplesPerChunk,
		ChunkIdx:        chunkIdx,
	}
}

// SampleToTime returns the physical time of sample i within this chunk:
// t_start + (chunk_idx*samples_per_chunk + i) / f_sample.
func (tb TimeBase) SampleToTime(i int) float64 {
	return tb.TStart + float64(tb.ChunkIdx*tb.SamplesPerChunk+i)/tb.FSample
}

// TimeToIndex returns the sample index corresponding to time t within this
// chunk's window, or (0, false) if t falls outside it.
//
//	idx = round((t - t_start) * f_sample) - chunk_idx*samples_per_chunk
func (tb TimeBase) TimeToIndex(t float64) (int, bool) {
	raw := math.Round((t-tb.TStart)*tb.FSample) - float64(tb.ChunkIdx*tb.SamplesPerChunk)
	idx := int(raw)
	if idx < 0 || idx >= tb.SamplesPerChunk {
		return 0, false
	}
	return idx, true
}

// Next returns the TimeBase for the following chunk index, preserving
// contiguity: consecutive chunk_idx values cover non-overlapping,
// contiguous time intervals.
func (tb TimeBase) Next() TimeBase {
	tb.ChunkIdx++
	return tb
}
