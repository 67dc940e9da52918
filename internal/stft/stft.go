// Package stft implements the detrend/window/strided-Fourier-transform
// stage that turns a time-domain Chunk into an FFTChunk.
package stft

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/kstarfusion/delta/internal/deltaerr"
	"github.com/kstarfusion/delta/internal/stream"
)

// Transform runs the STFT described by params over the given time-domain
// Chunk, producing one FFTChunk. Per-channel blocks are
// computed concurrently; the result is identical to a single-threaded pass
// over the same data since channels never interact.
func Transform(chunk stream.Chunk, params stream.Params) (stream.FFTChunk, error) {
	channels, samples := chunk.Shape()

	if params.NFFT <= 0 || params.NFFT > samples {
		return stream.FFTChunk{}, deltaerr.NewBadFFTParamsError(
			fmt.Sprintf("n_fft=%d exceeds chunk length N=%d", params.NFFT, samples))
	}
	window, err := windowCoefficients(params.Window, params.NFFT)
	if err != nil {
		return stream.FFTChunk{}, err
	}
	if params.Hop <= 0 {
		return stream.FFTChunk{}, deltaerr.NewBadFFTParamsError(
			fmt.Sprintf("hop must be positive, got %d", params.Hop))
	}

	numBlocks := (samples-params.NFFT)/params.Hop + 1
	if numBlocks <= 0 {
		return stream.FFTChunk{}, deltaerr.NewBadFFTParamsError(
			fmt.Sprintf("n_fft=%d, hop=%d produce zero blocks for N=%d", params.NFFT, params.Hop, samples))
	}
	numBins := params.NFFT/2 + 1

	var scale float64 = 1.0
	if params.NormalizeScale {
		var sumSq float64
		for _, w := range window {
			sumSq += w * w
		}
		if sumSq > 0 {
			scale = 1.0 / math.Sqrt(sumSq)
		}
	}

	blocks := make([]*mat.CDense, channels)
	g := new(errgroup.Group)
	for c := 0; c < channels; c++ {
		c := c
		g.Go(func() error {
			row := chunk.Row(c)
			block, err := transformChannel(row, params, window, scale, numBlocks, numBins)
			if err != nil {
				return err
			}
			blocks[c] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stream.FFTChunk{}, err
	}

	return stream.FFTChunk{Blocks: blocks, TB: chunk.TB, Params: params}, nil
}

func transformChannel(row []float64, params stream.Params, window []float64, scale float64, numBlocks, numBins int) (*mat.CDense, error) {
	fft := fourier.NewFFT(params.NFFT)
	out := mat.NewCDense(numBins, numBlocks, nil)

	segment := make([]float64, params.NFFT)
	for b := 0; b < numBlocks; b++ {
		start := b * params.Hop
		copy(segment, row[start:start+params.NFFT])

		detrend(segment, params.Detrend)
		for i := range segment {
			segment[i] *= window[i]
		}

		coeffs := fft.Coefficients(nil, segment)
		for k := 0; k < numBins; k++ {
			v := coeffs[k]
			if scale != 1.0 {
				v = complex(real(v)*scale, imag(v)*scale)
			}
			out.Set(k, b, v)
		}
	}
	return out, nil
}

// windowCoefficients returns the n_fft-length window named by name.
func windowCoefficients(name string, n int) ([]float64, error) {
	w := make([]float64, n)
	switch name {
	case stream.WindowHann, "":
		for i := range w {
			w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	case stream.WindowHamming:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	case stream.WindowRect:
		for i := range w {
			w[i] = 1.0
		}
	default:
		return nil, deltaerr.NewBadFFTParamsError(fmt.Sprintf("unknown window %q", name))
	}
	return w, nil
}

// detrend removes a constant or linear trend from segment in place. "none"
// leaves the segment untouched.
func detrend(segment []float64, mode string) {
	n := len(segment)
	switch mode {
	case stream.DetrendConstant:
		var mean float64
		for _, v := range segment {
			mean += v
		}
		mean /= float64(n)
		for i := range segment {
			segment[i] -= mean
		}
	case stream.DetrendLinear:
		// Least-squares fit of y = a + b*x over x = 0..n-1, subtract it.
		var sumX, sumY, sumXY, sumXX float64
		for i, v := range segment {
			x := float64(i)
			sumX += x
			sumY += v
			sumXY += x * v
			sumXX += x * x
		}
		nf := float64(n)
		denom := nf*sumXX - sumX*sumX
		if denom == 0 {
			return
		}
		b := (nf*sumXY - sumX*sumY) / denom
		a := (sumY - b*sumX) / nf
		for i := range segment {
			segment[i] -= a + b*float64(i)
		}
	case stream.DetrendNone, "":
	}
}
