package channel

import (
	"testing"

	"github.com/kstarfusion/delta/internal/deltaerr"
)

func TestParseRangeValid(t *testing.T) {
	r, err := ParseRange("L0101-L0204")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.V0 != 1 || r.H0 != 1 || r.V1 != 2 || r.H1 != 4 {
		t.Errorf("unexpected range: %+v", r)
	}
	if got := r.String(); got != "L0101-L0204" {
		t.Errorf("String() = %q, want L0101-L0204", got)
	}
}

func TestParseRangeMalformed(t *testing.T) {
	tests := []string{
		"L01-L0204",
		"L0101:L0204",
		"0101-0204",
		"L0101-L0204-L0301",
		"",
		"L2501-L2601",  // out of bounds v
		"L0109-L0110",  // out of bounds h
		"L0204-L0101",  // corners out of order
	}
	for _, s := range tests {
		_, err := ParseRange(s)
		if err == nil {
			t.Errorf("ParseRange(%q) expected error, got nil", s)
			continue
		}
		if !deltaerr.IsKind(err, deltaerr.KindMalformedRange) {
			t.Errorf("ParseRange(%q) error kind = %v, want KindMalformedRange", s, err)
		}
	}
}

func TestRangeLen(t *testing.T) {
	r, err := ParseRange("L0101-L0408")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Len(), 4*8; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestRangeIterHorizontalFastest(t *testing.T) {
	r, err := ParseRange("L0101-L0202")
	if err != nil {
		t.Fatal(err)
	}
	got := r.Iter()
	want := []Channel{New(1, 1), New(1, 2), New(2, 1), New(2, 2)}
	if len(got) != len(want) {
		t.Fatalf("Iter() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iter()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRangeSingleChannel(t *testing.T) {
	r, err := ParseRange("L0101-L0101")
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
