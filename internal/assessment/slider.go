package assessment

import "math"

const (
	MinDisplayMissRate     = 5
	MaxDisplayMissRate     = 50
	DefaultDisplayMissRate = 15
)

// Projection is the what-if view of missed calls and revenue at a chosen miss rate.
type Projection struct {
	MissRate    int     `json:"miss_rate"`
	MissedCalls int     `json:"missed_calls"`
	Revenue     float64 `json:"revenue"`
}

// Project recomputes the two display metrics for missRate percent. It never
// looks at or changes a Result.
func Project(in Input, missRate int) Projection {
	missedCalls := roundHalfUp(float64(MonthlyCalls(in)*missRate) / 100)
	revenue := float64(missedCalls) * float64(conversionRatePct) / 100 * in.AvgCaseValue
	return Projection{
		MissRate:    missRate,
		MissedCalls: missedCalls,
		Revenue:     float64(roundHalfUp(revenue)),
	}
}

// InitialDisplayMissRate reverse-derives the effective miss rate of res,
// falling back to DefaultDisplayMissRate when that comes out as 0 or NaN.
func InitialDisplayMissRate(in Input, res Result) int {
	ratio := float64(res.MissedCallsPerMonth) / float64(MonthlyCalls(in)) * 100
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return DefaultDisplayMissRate
	}
	rate := roundHalfUp(ratio)
	if rate == 0 {
		return DefaultDisplayMissRate
	}
	return rate
}

// ClampDisplayMissRate pins a user-chosen rate to the slider range.
func ClampDisplayMissRate(rate int) int {
	switch {
	case rate < MinDisplayMissRate:
		return MinDisplayMissRate
	case rate > MaxDisplayMissRate:
		return MaxDisplayMissRate
	default:
		return rate
	}
}

// Slider is the results view: a canonical result plus an adjustable miss rate.
type Slider struct {
	input    Input
	result   Result
	missRate int
}

// NewSlider starts at the reverse-derived rate. That rate is kept as-is even
// above MaxDisplayMissRate; only Set clamps.
func NewSlider(in Input, res Result) *Slider {
	return &Slider{
		input:    in,
		result:   res.Clone(),
		missRate: InitialDisplayMissRate(in, res),
	}
}

// Set moves the slider and returns the new projection.
func (s *Slider) Set(rate int) Projection {
	s.missRate = ClampDisplayMissRate(rate)
	return s.Projection()
}

// MissRate reports the current slider position.
func (s *Slider) MissRate() int {
	return s.missRate
}

// Projection recomputes the display metrics at the current position.
func (s *Slider) Projection() Projection {
	return Project(s.input, s.missRate)
}

// Result returns a copy of the canonical result.
func (s *Slider) Result() Result {
	return s.result.Clone()
}
