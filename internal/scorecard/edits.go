package scorecard

import "math"

// ItemEdit holds user-edited values for one item. Nil fields keep the value
// the item was loaded with.
type ItemEdit struct {
	ResponsibleParty *string  `json:"responsible_party,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	Score            *float64 `json:"score,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// Empty reports whether the edit changes nothing.
func (e ItemEdit) Empty() bool {
	return e.ResponsibleParty == nil && e.Weight == nil && e.Score == nil && e.Notes == nil
}

// Merge layers next over e; fields set in next win.
func (e ItemEdit) Merge(next ItemEdit) ItemEdit {
	out := e.Clone()
	if next.ResponsibleParty != nil {
		out.ResponsibleParty = ptr(*next.ResponsibleParty)
	}
	if next.Weight != nil {
		out.Weight = ptr(*next.Weight)
	}
	if next.Score != nil {
		out.Score = ptr(*next.Score)
	}
	if next.Notes != nil {
		out.Notes = ptr(*next.Notes)
	}
	return out
}

// Clone returns a deep copy of e.
func (e ItemEdit) Clone() ItemEdit {
	var out ItemEdit
	if e.ResponsibleParty != nil {
		out.ResponsibleParty = ptr(*e.ResponsibleParty)
	}
	if e.Weight != nil {
		out.Weight = ptr(*e.Weight)
	}
	if e.Score != nil {
		out.Score = ptr(*e.Score)
	}
	if e.Notes != nil {
		out.Notes = ptr(*e.Notes)
	}
	return out
}

// Apply returns item with the edit's values in place.
func (e ItemEdit) Apply(item ScoreItem) ScoreItem {
	if e.ResponsibleParty != nil {
		item.ResponsibleParty = *e.ResponsibleParty
	}
	if e.Weight != nil {
		item.Weight = math.Max(0, *e.Weight)
	}
	if e.Score != nil {
		item.Score = clampScore(*e.Score)
	}
	if e.Notes != nil {
		item.Notes = *e.Notes
	}
	return item
}

// ApplyEdits rebuilds the current table from the loaded items and the edits
// keyed by item ID. base is not modified.
func ApplyEdits(base []ScoreItem, edits map[int]ItemEdit) []ScoreItem {
	out := make([]ScoreItem, len(base))
	for i, it := range base {
		if e, ok := edits[it.ID]; ok {
			it = e.Apply(it)
		}
		out[i] = it
	}
	return out
}

// SnapToStep rounds v to the nearest multiple of step within [0, MaxScore].
// A non-positive step leaves v unchanged apart from clamping.
func SnapToStep(v, step float64) float64 {
	if step > 0 {
		v = math.Round(v/step) * step
		// keep 0.1 steps from drifting to 3.3000000000000003
		v = math.Round(v*1e6) / 1e6
	}
	return clampScore(v)
}

func ptr[T any](v T) *T { return &v }
