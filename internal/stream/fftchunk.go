package stream

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kstarfusion/delta/internal/timebase"
)

// Window names recognised by fft_params.window.
const (
	WindowHann    = "hann"
	WindowHamming = "hamming"
	WindowRect    = "rect"
)

// Detrend modes recognised by fft_params.detrend.
const (
	DetrendNone     = "none"
	DetrendConstant = "constant"
	DetrendLinear   = "linear"
)

// Params mirrors fft_params from the configuration: the parameters that
// produced one FFTChunk from one Chunk.
type Params struct {
	NFFT           int
	Window         string
	Hop            int
	Detrend        string
	FSample        float64
	NormalizeScale bool
}

// FFTChunk is the STFT output for one Chunk: one (F x B) complex matrix
// per channel (F Fourier bins, B short-time blocks), the originating
// TimeBase, and the parameters that produced it. An FFTChunk is shared
// read-only by every AnalysisTask dispatched for the same chunk; it must
// not be mutated after construction.
type FFTChunk struct {
	// Blocks holds one F x B complex matrix per channel.
	Blocks []*mat.CDense
	TB     timebase.TimeBase
	Params Params
}

// NumBins returns F, the number of Fourier bins per block.
func (f FFTChunk) NumBins() int {
	if len(f.Blocks) == 0 {
		return 0
	}
	r, _ := f.Blocks[0].Dims()
	return r
}

// NumBlocks returns B, the number of short-time blocks per channel.
func (f FFTChunk) NumBlocks() int {
	if len(f.Blocks) == 0 {
		return 0
	}
	_, c := f.Blocks[0].Dims()
	return c
}

// NumChannels returns C, the number of channels carried by this FFTChunk.
func (f FFTChunk) NumChannels() int {
	return len(f.Blocks)
}

// MeanOverBlocks returns, for channel idx, the per-bin mean over the block
// axis: a vector of length F. This is the `mean_B(·)` operator the kernel
// definitions use throughout.
func (f FFTChunk) MeanOverBlocks(idx int) []complex128 {
	ch := f.Blocks[idx]
	rows, cols := ch.Dims()
	out := make([]complex128, rows)
	if cols == 0 {
		return out
	}
	for r := 0; r < rows; r++ {
		var sum complex128
		for b := 0; b < cols; b++ {
			sum += ch.At(r, b)
		}
		out[r] = sum / complex(float64(cols), 0)
	}
	return out
}

// Bin returns all B blocks at Fourier bin f for channel idx.
func (fc FFTChunk) Bin(idx, bin int) []complex128 {
	ch := fc.Blocks[idx]
	_, cols := ch.Dims()
	out := make([]complex128, cols)
	for b := 0; b < cols; b++ {
		out[b] = ch.At(bin, b)
	}
	return out
}
