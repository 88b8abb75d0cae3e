package scoring

import (
	"fmt"
	"math"
)

// Thresholds are the overall score percentages at which the deal signal
// turns yellow and green.
type Thresholds struct {
	Green  float64
	Yellow float64
}

// DefaultThresholds returns the standard traffic-light cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Green:  85,
		Yellow: 70,
	}
}

// Validate checks that 0 <= yellow <= green <= 100.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.Green, t.Yellow} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("signal threshold %.2f outside 0-100", v)
		}
	}
	if t.Yellow > t.Green {
		return fmt.Errorf("yellow threshold %.2f above green threshold %.2f", t.Yellow, t.Green)
	}
	return nil
}

// ScoreSteps are the allowed score editing granularities.
var ScoreSteps = []float64{0.1, 0.5, 1.0}

// ValidScoreStep reports whether step is one of ScoreSteps.
func ValidScoreStep(step float64) bool {
	for _, s := range ScoreSteps {
		if math.Abs(step-s) < 1e-9 {
			return true
		}
	}
	return false
}
