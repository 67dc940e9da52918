package analysis

import (
	"reflect"
	"testing"

	"github.com/kstarfusion/delta/internal/channel"
)

func mustRange(t *testing.T, s string) channel.Range {
	t.Helper()
	r, err := channel.ParseRange(s)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", s, err)
	}
	return r
}

func TestTaskPairsRefMajorCrossMinor(t *testing.T) {
	task := Task{
		Name:       "t1",
		Kind:       KindCrossPhase,
		RefRange:   mustRange(t, "L0101-L0102"),
		CrossRange: mustRange(t, "L0201-L0202"),
	}
	pairs := task.Pairs()
	want := []string{"L0101-L0201", "L0101-L0202", "L0102-L0201", "L0102-L0202"}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, p := range pairs {
		got := p.Ref.String() + "-" + p.Cross.String()
		if got != want[i] {
			t.Errorf("pair %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestDispatchSequenceRoundTrip(t *testing.T) {
	t1 := Task{Name: "phase", Kind: KindCrossPhase, RefRange: mustRange(t, "L0101-L0101"), CrossRange: mustRange(t, "L0102-L0102")}
	t2 := Task{Name: "coh", Kind: KindCoherence, RefRange: mustRange(t, "L0101-L0102"), CrossRange: mustRange(t, "L0101-L0102")}

	seq := DispatchSequence{BuildTaskSequence(t1), BuildTaskSequence(t2)}

	data, err := seq.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed, err := ParseDispatchSequence(data)
	if err != nil {
		t.Fatalf("ParseDispatchSequence: %v", err)
	}

	if !reflect.DeepEqual(seq, parsed) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", parsed, seq)
	}
}
