package channel

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kstarfusion/delta/internal/deltaerr"
)

// rangePattern matches "LvvHH-LvvHH": two zero-padded (v,h) coordinate
// pairs separated by a hyphen. Any other shape is MalformedRange.
var rangePattern = regexp.MustCompile(`^L(\d{2})(\d{2})-L(\d{2})(\d{2})$`)

// RasterOrder controls the iteration order of a ChannelRange.
type RasterOrder int

const (
	// HorizontalMajor iterates with h varying fastest (the default
	// "horizontal-fastest" raster order, e.g. channel.1 before channel.2).
	HorizontalMajor RasterOrder = iota
	// VerticalMajor iterates with v varying fastest.
	VerticalMajor
)

// Range is an inclusive rectangular region [V0..V1] x [H0..H1] of the
// channel grid, iterable as an ordered sequence of Channels.
type Range struct {
	V0, H0, V1, H1 int
	Order          RasterOrder
}

// NewRange constructs a Range spanning the two corner channels, inclusive.
// Corners are normalized so V0<=V1 and H0<=H1 regardless of argument order.
func NewRange(c0, c1 Channel) Range {
	v0, v1 := c0.V, c1.V
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	h0, h1 := c0.H, c1.H
	if h0 > h1 {
		h0, h1 = h1, h0
	}
	return Range{V0: v0, H0: h0, V1: v1, H1: h1, Order: HorizontalMajor}
}

// ParseRange parses a "LvvHH-LvvHH" string into a Range. It fails with a
// deltaerr.CoreError{Kind: KindMalformedRange} on any deviation from the
// pattern or on coordinates outside the device grid.
func ParseRange(s string) (Range, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return Range{}, deltaerr.NewMalformedRangeError(fmt.Sprintf("channel range %q does not match L\\d{4}-L\\d{4}", s))
	}

	v0, _ := strconv.Atoi(m[1])
	h0, _ := strconv.Atoi(m[2])
	v1, _ := strconv.Atoi(m[3])
	h1, _ := strconv.Atoi(m[4])

	c0, c1 := New(v0, h0), New(v1, h1)
	if !c0.InBounds() || !c1.InBounds() {
		return Range{}, deltaerr.NewMalformedRangeError(fmt.Sprintf("channel range %q has coordinates outside [%d,%d]x[%d,%d]", s, MinV, MaxV, MinH, MaxH))
	}
	if v0 > v1 || h0 > h1 {
		return Range{}, deltaerr.NewMalformedRangeError(fmt.Sprintf("channel range %q corners are not in increasing order", s))
	}

	return Range{V0: v0, H0: h0, V1: v1, H1: h1, Order: HorizontalMajor}, nil
}

// String renders the range as "LV0H0-LV1H1".
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", New(r.V0, r.H0), New(r.V1, r.H1))
}

// Len returns the number of channels in the range.
func (r Range) Len() int {
	return (r.V1 - r.V0 + 1) * (r.H1 - r.H0 + 1)
}

// Iter returns the range's channels in raster order: horizontal-fastest
// for HorizontalMajor (the default), vertical-fastest for VerticalMajor.
func (r Range) Iter() []Channel {
	out := make([]Channel, 0, r.Len())
	switch r.Order {
	case VerticalMajor:
		for h := r.H0; h <= r.H1; h++ {
			for v := r.V0; v <= r.V1; v++ {
				out = append(out, New(v, h))
			}
		}
	default: // HorizontalMajor
		for v := r.V0; v <= r.V1; v++ {
			for h := r.H0; h <= r.H1; h++ {
				out = append(out, New(v, h))
			}
		}
	}
	return out
}

// WithOrder returns a copy of r using the given raster order.
func (r Range) WithOrder(o RasterOrder) Range {
	r.Order = o
	return r
}

// TotalChannels sums the channel count of every range string in ranges,
// falling back to the full device grid if ranges is empty or any entry
// fails to parse.
func TotalChannels(ranges []string) int {
	total := 0
	for _, s := range ranges {
		r, err := ParseRange(s)
		if err != nil {
			return MaxV * MaxH
		}
		total += r.Len()
	}
	if total == 0 {
		return MaxV * MaxH
	}
	return total
}
