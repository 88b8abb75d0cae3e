package scoring

import (
	"log/slog"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
)

// ItemResult is one item together with its weighted score.
type ItemResult struct {
	scorecard.ScoreItem
	WeightedScore float64 `json:"weighted_score"`
}

// CategorySummary rolls up the items of one category.
type CategorySummary struct {
	Category     string  `json:"category"`
	ItemCount    int     `json:"item_count"`
	WeightSum    float64 `json:"weight_sum"`
	WeightedSum  float64 `json:"weighted_sum"`
	MaxPoints    float64 `json:"max_points"`
	ScorePercent Percent `json:"score_percent"`
}

// OverallResult rolls up every category.
type OverallResult struct {
	OverallWeighted float64 `json:"overall_weighted"`
	OverallWeight   float64 `json:"overall_weight"`
	OverallPercent  Percent `json:"overall_percent"`
	Signal          Signal  `json:"signal"`
}

// Result is the complete aggregation of a scorecard.
type Result struct {
	Items      []ItemResult      `json:"items"`
	Categories []CategorySummary `json:"categories"`
	Overall    OverallResult     `json:"overall"`
}

// Aggregator computes weighted category and overall scores.
type Aggregator struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewAggregator creates an Aggregator with the given signal thresholds.
func NewAggregator(thresholds Thresholds, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Aggregate scores every item and rolls the results up per category (in
// first-seen order) and overall. It never fails: a category or scorecard
// with no weight gets an undefined percentage.
func (a *Aggregator) Aggregate(items []scorecard.ScoreItem) Result {
	var res Result

	for _, g := range scorecard.GroupByCategory(items) {
		sum := CategorySummary{
			Category:  g.Category,
			ItemCount: len(g.Items),
		}
		for _, it := range g.Items {
			weighted := it.WeightedScore()
			res.Items = append(res.Items, ItemResult{ScoreItem: it, WeightedScore: weighted})
			sum.WeightSum += it.Weight
			sum.WeightedSum += weighted
		}
		sum.MaxPoints = sum.WeightSum * scorecard.MaxScore
		sum.ScorePercent = percentOf(sum.WeightedSum, sum.MaxPoints)
		res.Categories = append(res.Categories, sum)
	}

	for _, c := range res.Categories {
		res.Overall.OverallWeighted += c.WeightedSum
		res.Overall.OverallWeight += c.WeightSum
	}
	res.Overall.OverallPercent = percentOf(res.Overall.OverallWeighted, res.Overall.OverallWeight*scorecard.MaxScore)
	res.Overall.Signal = a.thresholds.Classify(res.Overall.OverallPercent)

	a.logger.Debug("scorecard aggregated",
		"items", len(res.Items),
		"categories", len(res.Categories),
		"overall_percent", res.Overall.OverallPercent.String(),
		"signal", res.Overall.Signal,
	)
	return res
}

// percentOf is achieved/max as a percentage rounded to two decimals, or
// undefined when max is zero.
func percentOf(achieved, max float64) Percent {
	if max <= 0 {
		return Undefined()
	}
	return Percent(round2(achieved / max * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
