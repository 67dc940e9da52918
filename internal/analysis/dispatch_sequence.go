package analysis

import "encoding/json"

// PairStrings is one (ref, cross) entry in a serialized dispatch sequence.
type PairStrings [2]string

// TaskSequence is one task's entry in a serialized DispatchSequence:
// `{analysis, ref_channels, cross_channels, pairs: [[ref_str, cross_str], ...]}`.
type TaskSequence struct {
	Analysis      string        `json:"analysis"`
	RefChannels   string        `json:"ref_channels"`
	CrossChannels string        `json:"cross_channels"`
	Pairs         []PairStrings `json:"pairs"`
}

// DispatchSequence is the full per-run record the StorageAdapter writes
// into run metadata: one TaskSequence per configured task, in task_list
// order.
type DispatchSequence []TaskSequence

// BuildTaskSequence records task's dispatch order as channel strings, the
// same order the dispatcher submits to the executor.
func BuildTaskSequence(t Task) TaskSequence {
	pairs := t.Pairs()
	strPairs := make([]PairStrings, len(pairs))
	for i, p := range pairs {
		strPairs[i] = PairStrings{p.Ref.String(), p.Cross.String()}
	}
	return TaskSequence{
		Analysis:      string(t.Kind),
		RefChannels:   t.RefRange.String(),
		CrossChannels: t.CrossRange.String(),
		Pairs:         strPairs,
	}
}

// BuildDispatchSequence records the dispatch order of every task in tasks,
// in the order given.
func BuildDispatchSequence(tasks []Task) DispatchSequence {
	seq := make(DispatchSequence, len(tasks))
	for i, t := range tasks {
		seq[i] = BuildTaskSequence(t)
	}
	return seq
}

// Serialize renders the dispatch sequence as the JSON document the
// StorageAdapter persists alongside run metadata.
func (d DispatchSequence) Serialize() ([]byte, error) {
	return json.Marshal(d)
}

// ParseDispatchSequence parses the JSON document Serialize produces; for
// any DispatchSequence d, ParseDispatchSequence(d.Serialize()) == d.
func ParseDispatchSequence(data []byte) (DispatchSequence, error) {
	var d DispatchSequence
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}
