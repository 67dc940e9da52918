// Package normalize implements a per-channel offset/scale correction that
// arms once a configured warm-up window of samples has been observed, and
// thereafter normalizes every chunk in place.
package normalize

import (
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"

	"github.com/kstarfusion/delta/internal/stream"
)

// MinWarmupSamples is the minimum number of in-window samples the
// Normalizer must see before it is allowed to arm.
const MinWarmupSamples = 100

// constants holds the per-row offset computed at arming time. offlev is the
// median of the warm-up window; offstd is its standard deviation. offstd is
// stored but not read by the per-sample transform below or anywhere else.
type constants struct {
	offlev []float64
	offstd []float64
}

// Normalizer is safe for concurrent use: Observe is called by the receiver
// goroutine during warm-up, Apply is called for every chunk thereafter
// (including, potentially, from a different goroutine once armed). Once
// armed it never disarms.
type Normalizer struct {
	tNorm0, tNorm1 float64

	armed atomic.Bool
	c     atomic.Pointer[constants]
}

// New creates a Normalizer that arms once it has observed samples whose
// timestamps fall in [tNorm0, tNorm1].
func New(tNorm0, tNorm1 float64) *Normalizer {
	return &Normalizer{tNorm0: tNorm0, tNorm1: tNorm1}
}

// Armed reports whether the Normalizer has computed its offset constants.
func (n *Normalizer) Armed() bool {
	return n.armed.Load()
}

// Observe inspects chunk for samples within the warm-up window and, if it
// finds at least MinWarmupSamples, arms the Normalizer using their
// channel-wise median (offlev) and standard deviation (offstd). Observe is
// a no-op once armed. It returns true iff this call caused arming.
func (n *Normalizer) Observe(chunk stream.Chunk) bool {
	if n.Armed() {
		return false
	}

	channels, samples := chunk.Shape()
	lo, hi := -1, -1
	for i := 0; i < samples; i++ {
		t := chunk.TB.SampleToTime(i)
		if t < n.tNorm0 || t > n.tNorm1 {
			continue
		}
		if lo == -1 {
			lo = i
		}
		hi = i
	}
	if lo == -1 || hi-lo+1 < MinWarmupSamples {
		return false
	}

	window := hi - lo + 1
	offlev := make([]float64, channels)
	offstd := make([]float64, channels)
	buf := make([]float64, window)
	for c := 0; c < channels; c++ {
		row := chunk.Row(c)
		copy(buf, row[lo:hi+1])
		sort.Float64s(buf)
		offlev[c] = stat.Quantile(0.5, stat.Empirical, buf, nil)
		offstd[c] = stat.StdDev(buf, nil)
	}

	n.c.Store(&constants{offlev: offlev, offstd: offstd})
	n.armed.Store(true)
	return true
}

// Apply normalizes chunk in place: for each channel row x, it computes
// y = x - offlev, then replaces the row with y/mean(y) - 1. Apply requires
// the Normalizer to be armed; callers must check Armed first.
func (n *Normalizer) Apply(chunk stream.Chunk) {
	c := n.c.Load()
	if c == nil {
		panic("normalize: Apply called before Normalizer was armed")
	}

	channels, samples := chunk.Shape()
	for ch := 0; ch < channels; ch++ {
		row := chunk.Row(ch)
		offset := c.offlev[ch]

		var sum float64
		for i := 0; i < samples; i++ {
			row[i] -= offset
			sum += row[i]
		}
		mean := sum / float64(samples)
		if mean == 0 {
			continue
		}
		for i := 0; i < samples; i++ {
			row[i] = row[i]/mean - 1.0
		}
	}
}
