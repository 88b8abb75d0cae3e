package scoring

import (
	"github.com/dustin/go-humanize"
)

// Headline holds the four summary metrics shown above the breakdown.
type Headline struct {
	OverallWeighted string `json:"overall_weighted"`
	TotalWeight     string `json:"total_weight"`
	OverallScore    string `json:"overall_score"`
	DealSignal      string `json:"deal_signal"`
}

// NewHeadline formats an overall result for display. An undefined overall
// score renders blank.
func NewHeadline(o OverallResult) Headline {
	h := Headline{
		OverallWeighted: humanize.FormatFloat("#,###.###", o.OverallWeighted),
		TotalWeight:     humanize.FormatFloat("#,###.###", o.OverallWeight),
		DealSignal:      o.Signal.Badge(),
	}
	if o.OverallPercent.Defined() {
		h.OverallScore = o.OverallPercent.String() + "%"
	}
	return h
}
