package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/kstarfusion/delta/internal/stream"
)

// Result carries one kernel's output: a flat, row-major buffer plus the
// dimensions that give it meaning. Scalar results have an empty Dims.
type Result struct {
	Shape OutputShape
	Dims  []int
	Data  []float64
}

// Scalar wraps a single value as a Result.
func Scalar(v float64) Result {
	return Result{Shape: ShapeScalar, Data: []float64{v}}
}

// crossTerm returns the (F x B) elementwise product X[f,b] * conj(Y[f,b])
// for the given pair, read directly off the FFTChunk's blocks.
func crossTerm(fft stream.FFTChunk, refIdx, crossIdx int) [][]complex128 {
	f := fft.NumBins()
	b := fft.NumBlocks()
	out := make([][]complex128, f)
	for k := 0; k < f; k++ {
		xr := fft.Bin(refIdx, k)
		yr := fft.Bin(crossIdx, k)
		row := make([]complex128, b)
		for j := 0; j < b; j++ {
			row[j] = xr[j] * cmplx.Conj(yr[j])
		}
		out[k] = row
	}
	return out
}

func meanOverBlocks(rows [][]complex128) []complex128 {
	out := make([]complex128, len(rows))
	for k, row := range rows {
		var sum complex128
		for _, v := range row {
			sum += v
		}
		out[k] = sum / complex(float64(len(row)), 0)
	}
	return out
}

func meanAll(rows [][]complex128) complex128 {
	var sum complex128
	var n int
	for _, row := range rows {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / complex(float64(n), 0)
}

// Compute evaluates the pairwise kernels (every Kind except skw, which the
// dispatcher handles separately since it operates across a whole range
// rather than a single pair) for one (ref_idx, cross_idx) pair.
func Compute(kind Kind, fft stream.FFTChunk, refIdx, crossIdx int, perBin bool) (Result, error) {
	switch kind {
	case KindCrossPower:
		return crossPower(fft, refIdx, crossIdx, perBin), nil
	case KindCrossPhase:
		return crossPhase(fft, refIdx, crossIdx, perBin), nil
	case KindCoherence:
		return coherence(fft, refIdx, crossIdx, perBin), nil
	case KindCrossCorrelation:
		return crossCorrelation(fft, refIdx, crossIdx), nil
	case KindBicoherence:
		return bicoherence(fft, refIdx, crossIdx), nil
	default:
		return Result{}, nil
	}
}

func crossPower(fft stream.FFTChunk, refIdx, crossIdx int, perBin bool) Result {
	term := crossTerm(fft, refIdx, crossIdx)
	if perBin {
		means := meanOverBlocks(term)
		data := make([]float64, len(means))
		for i, v := range means {
			data[i] = cmplx.Abs(v)
		}
		return Result{Shape: ShapeVectorF, Dims: []int{len(data)}, Data: data}
	}
	return Scalar(cmplx.Abs(meanAll(term)))
}

func crossPhase(fft stream.FFTChunk, refIdx, crossIdx int, perBin bool) Result {
	term := crossTerm(fft, refIdx, crossIdx)
	if perBin {
		means := meanOverBlocks(term)
		data := make([]float64, len(means))
		for i, v := range means {
			data[i] = math.Atan2(imag(v), real(v))
		}
		return Result{Shape: ShapeVectorF, Dims: []int{len(data)}, Data: data}
	}
	m := meanAll(term)
	return Scalar(math.Atan2(imag(m), real(m)))
}

func coherence(fft stream.FFTChunk, refIdx, crossIdx int, perBin bool) Result {
	f := fft.NumBins()
	b := fft.NumBlocks()
	normalized := make([][]complex128, f)
	for k := 0; k < f; k++ {
		xr := fft.Bin(refIdx, k)
		yr := fft.Bin(crossIdx, k)
		row := make([]complex128, b)
		for j := 0; j < b; j++ {
			denom := math.Sqrt(real(xr[j]*cmplx.Conj(xr[j])) * real(yr[j]*cmplx.Conj(yr[j])))
			if denom == 0 {
				row[j] = 0
				continue
			}
			row[j] = (xr[j] * cmplx.Conj(yr[j])) / complex(denom, 0)
		}
		normalized[k] = row
	}

	if perBin {
		means := meanOverBlocks(normalized)
		data := make([]float64, len(means))
		for i, v := range means {
			data[i] = cmplx.Abs(v)
		}
		return Result{Shape: ShapeVectorF, Dims: []int{len(data)}, Data: data}
	}
	return Scalar(cmplx.Abs(meanAll(normalized)))
}

func crossCorrelation(fft stream.FFTChunk, refIdx, crossIdx int) Result {
	term := crossTerm(fft, refIdx, crossIdx)
	means := meanOverBlocks(term)

	nfft := fft.Params.NFFT
	ifft := fourier.NewFFT(nfft)
	seq := ifft.Sequence(nil, means)

	return Result{Shape: ShapeVectorN, Dims: []int{len(seq)}, Data: seq}
}

// bicoherence implements the bicoherence kernel: for every pair of bins
// (f1, f2) with f1+f2 within the Nyquist range,
//
//	B(f1,f2)   = mean_B(X(f1) X(f2) conj(Y(f1+f2)))
//	P1(f1,f2)  = mean_B(|X(f1) X(f2)|^2)
//	P2(f1+f2)  = mean_B(|Y(f1+f2)|^2)
//	result     = |B|^2 / (P1 * P2)
//
// Bin pairs where f1+f2 falls outside [0, F) are left at zero.
func bicoherence(fft stream.FFTChunk, refIdx, crossIdx int) Result {
	f := fft.NumBins()
	b := fft.NumBlocks()
	data := make([]float64, f*f)

	for f1 := 0; f1 < f; f1++ {
		x1 := fft.Bin(refIdx, f1)
		for f2 := 0; f2 < f; f2++ {
			sum := f1 + f2
			if sum >= f {
				continue
			}
			x2 := fft.Bin(refIdx, f2)
			ySum := fft.Bin(crossIdx, sum)

			var bNum complex128
			var p1, p2 float64
			for blk := 0; blk < b; blk++ {
				x12 := x1[blk] * x2[blk]
				bNum += x12 * cmplx.Conj(ySum[blk])
				p1 += real(x12 * cmplx.Conj(x12))
				p2 += real(ySum[blk] * cmplx.Conj(ySum[blk]))
			}
			bNum /= complex(float64(b), 0)
			p1 /= float64(b)
			p2 /= float64(b)

			denom := p1 * p2
			if denom == 0 {
				continue
			}
			mag := cmplx.Abs(bNum)
			data[f1*f+f2] = (mag * mag) / denom
		}
	}

	return Result{Shape: ShapeMatrixFF, Dims: []int{f, f}, Data: data}
}

// ComputeSKW implements the skw kernel: a 2-D FFT across the spatial
// (cross-channel) axis of mean_B(X . conj(Y)) for one reference channel
// against every channel in crossIdxs, producing a (F x K) spectral
// density where K = len(crossIdxs). Unlike the other kernels, skw is
// evaluated once per reference channel rather than once per pair, since
// the spatial transform needs the full cross range at once.
func ComputeSKW(fft stream.FFTChunk, refIdx int, crossIdxs []int) Result {
	f := fft.NumBins()
	k := len(crossIdxs)

	spatial := make([][]complex128, f)
	for bin := 0; bin < f; bin++ {
		xr := fft.Bin(refIdx, bin)
		row := make([]complex128, k)
		for ki, crossIdx := range crossIdxs {
			yr := fft.Bin(crossIdx, bin)
			b := len(xr)
			var sum complex128
			for blk := 0; blk < b && blk < len(yr); blk++ {
				sum += xr[blk] * cmplx.Conj(yr[blk])
			}
			row[ki] = sum / complex(float64(b), 0)
		}
		spatial[bin] = row
	}

	data := make([]float64, f*k)
	spatialFFT := fourier.NewCmplxFFT(k)
	for bin := 0; bin < f; bin++ {
		transformed := spatialFFT.Coefficients(nil, spatial[bin])
		for ki, v := range transformed {
			data[bin*k+ki] = cmplx.Abs(v)
		}
	}

	return Result{Shape: ShapeMatrixFK, Dims: []int{f, k}, Data: data}
}
