package scorecard

// MaxScore is the top of the rating scale; scores live in [0, MaxScore].
const MaxScore = 5.0

// ScoreItem is one line item of a due-diligence scorecard.
type ScoreItem struct {
	// ID is the item's position in the normalized table and its identity
	// for edits.
	ID               int     `json:"id"`
	Category         string  `json:"category"`
	Item             string  `json:"item"`
	ResponsibleParty string  `json:"responsible_party"`
	Weight           float64 `json:"weight"`
	Score            float64 `json:"score"`
	Notes            string  `json:"notes"`
}

// WeightedScore is the item's contribution to its category total.
func (s ScoreItem) WeightedScore() float64 {
	return s.Weight * s.Score
}

// CategoryGroup is a run of items sharing a category.
type CategoryGroup struct {
	Category string      `json:"category"`
	Items    []ScoreItem `json:"items"`
}

// GroupByCategory partitions items by category. Groups appear in the order
// their category is first seen and items keep their relative order.
func GroupByCategory(items []ScoreItem) []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, CategoryGroup{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
