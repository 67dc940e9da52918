package channel

import "testing"

func TestChannelString(t *testing.T) {
	tests := []struct {
		v, h     int
		expected string
	}{
		{1, 1, "L0101"},
		{24, 8, "L2408"},
		{5, 12, "L0512"},
	}
	for _, tt := range tests {
		c := New(tt.v, tt.h)
		if got := c.String(); got != tt.expected {
			t.Errorf("Channel{%d,%d}.String() = %q, want %q", tt.v, tt.h, got, tt.expected)
		}
	}
}

func TestChannelIdx(t *testing.T) {
	tests := []struct {
		v, h int
		idx  int
	}{
		{1, 1, 0},
		{1, 8, 7},
		{2, 1, 8},
		{24, 8, 191},
	}
	for _, tt := range tests {
		c := New(tt.v, tt.h)
		if got := c.Idx(); got != tt.idx {
			t.Errorf("Channel{%d,%d}.Idx() = %d, want %d", tt.v, tt.h, got, tt.idx)
		}
	}
}

func TestChannelInBounds(t *testing.T) {
	if !New(1, 1).InBounds() {
		t.Error("L0101 should be in bounds")
	}
	if !New(24, 8).InBounds() {
		t.Error("L2408 should be in bounds")
	}
	if New(25, 1).InBounds() {
		t.Error("L2501 should be out of bounds")
	}
	if New(1, 9).InBounds() {
		t.Error("L0109 should be out of bounds")
	}
	if New(0, 1).InBounds() {
		t.Error("L0001 should be out of bounds")
	}
}
