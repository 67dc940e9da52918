// Package channel provides the integer-indexed 2-D channel identity used
// throughout Delta: a vertical/horizontal pair addressing one row of the
// KSTAR ECEI array, plus inclusive rectangular ranges over that grid.
package channel

import "fmt"

// Device tags recognised for a Channel. A Channel does not validate its
// tag against this list; it is carried for display/logging purposes only.
const (
	DeviceKSTARECEI = "kstarecei"
	DeviceNSTXGPI   = "nstxgpi"
)

// Bounds of the ECEI grid: 24 vertical rows, 8 horizontal columns.
const (
	MinV = 1
	MaxV = 24
	MinH = 1
	MaxH = 8
)

// Channel is an immutable (vertical, horizontal) grid coordinate plus a
// static device tag.
type Channel struct {
	V      int
	H      int
	Device string
}

// New constructs a Channel, defaulting Device to DeviceKSTARECEI.
func New(v, h int) Channel {
	return Channel{V: v, H: h, Device: DeviceKSTARECEI}
}

// Idx returns the linear index idx = (v-1)*8 + (h-1), in [0, 192).
func (c Channel) Idx() int {
	return (c.V-1)*MaxH + (c.H - 1)
}

// String renders the channel as "LVVHH", zero-padded to two digits each.
func (c Channel) String() string {
	return fmt.Sprintf("L%02d%02d", c.V, c.H)
}

// InBounds reports whether the channel's coordinates fall within the
// device grid ([1,24] x [1,8]).
func (c Channel) InBounds() bool {
	return c.V >= MinV && c.V <= MaxV && c.H >= MinH && c.H <= MaxH
}
