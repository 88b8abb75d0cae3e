package scoring

import (
	"encoding/json"
	"math"
	"strconv"
)

// Percent is a score percentage. It is undefined (NaN) when there is no
// weight to score against; undefined marshals to JSON null.
type Percent float64

// Undefined returns the undefined percentage.
func Undefined() Percent { return Percent(math.NaN()) }

// Defined reports whether p holds a value.
func (p Percent) Defined() bool { return !math.IsNaN(float64(p)) }

// String formats p with two decimals, or "" when undefined.
func (p Percent) String() string {
	if !p.Defined() {
		return ""
	}
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// Signal is the traffic-light deal indicator.
type Signal string

const (
	SignalGreen  Signal = "GREEN"
	SignalYellow Signal = "YELLOW"
	SignalRed    Signal = "RED"
)

// Badge is the emoji shown for the signal.
func (s Signal) Badge() string {
	switch s {
	case SignalGreen:
		return "🟢"
	case SignalYellow:
		return "🟡"
	default:
		return "🔴"
	}
}

// Classify maps an overall percentage to a signal. An undefined percentage
// is RED.
func (t Thresholds) Classify(p Percent) Signal {
	if !p.Defined() {
		return SignalRed
	}
	v := float64(p)
	switch {
	case v >= t.Green:
		return SignalGreen
	case v >= t.Yellow:
		return SignalYellow
	default:
		return SignalRed
	}
}
