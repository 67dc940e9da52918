package analysis

import "github.com/kstarfusion/delta/internal/channel"

// Task configures one entry from task_list: an analysis Kind plus the
// reference and cross channel ranges it pairs.
type Task struct {
	Name        string
	Kind        Kind
	RefRange    channel.Range
	CrossRange  channel.Range
	PerBin      bool
	Description string
}

// Pair is one (ref, cross) channel pair in dispatch order.
type Pair struct {
	Ref   channel.Channel
	Cross channel.Channel
}

// Pairs expands RefRange x CrossRange into the ordered pair sequence,
// ref-major and cross-minor.
func (t Task) Pairs() []Pair {
	refs := t.RefRange.Iter()
	crosses := t.CrossRange.Iter()
	out := make([]Pair, 0, len(refs)*len(crosses))
	for _, r := range refs {
		for _, c := range crosses {
			out = append(out, Pair{Ref: r, Cross: c})
		}
	}
	return out
}
