package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	workingDaysPerMonth = 22

	// Miss rates and the conversion rate are held in whole percentage points so
	// the rule table adds up exactly.
	baseMissRatePct   = 15
	conversionRatePct = 5

	highRevenueThreshold = 20000
	maxRiskScore         = 100
	highRiskThreshold    = 60
	mediumRiskThreshold  = 30
)

// FactorCode identifies one rule of the scoring table.
type FactorCode string

const (
	FactorMultitaskingReception FactorCode = "multitasking_reception"
	FactorNextDayFollowUp       FactorCode = "next_day_follow_up"
	FactorDelayedFollowUp       FactorCode = "delayed_follow_up"
	FactorNoMissedCallPlan      FactorCode = "no_missed_call_plan"
	FactorVoicemail             FactorCode = "voicemail"
	FactorPaidAds               FactorCode = "paid_ads"
	FactorHighCaseValue         FactorCode = "high_case_value"
)

// Recommendation copy, appended in evaluation order.
const (
	RecommendationMultitasking = "Staff balancing patients and phones will miss calls at peak hours. Let AI take every call so your front desk can focus on the patients in the chair."
	RecommendationNextDay      = "Responding next day reduces conversion by 90%. Instant follow-up reaches new patients while they are still deciding."
	RecommendationNothing      = "Calls going nowhere means 100% loss of those patients. Every unanswered call should reach someone who can book."
	RecommendationVoicemail    = "70% of callers hang up on voicemail and dial the next clinic on their list."
	RecommendationPaidAds      = "Paid traffic with missed calls burns budget twice as fast."
	RecommendationCoverage     = "You have decent coverage, but AI ensures 0% slip-through rate 24/7."
)

// Factor is one triggered rule with its contribution to the result.
type Factor struct {
	Code           FactorCode `json:"code"`
	ScorePoints    int        `json:"score_points"`
	MissRatePoints int        `json:"miss_rate_points"`
	Recommendation string     `json:"recommendation,omitempty"`
}

// Score maps answers to a result. It is pure and deterministic.
func Score(in Input) Result {
	res, _ := evaluate(in)
	return res
}

// Breakdown lists the rules that fired for in, in evaluation order.
func Breakdown(in Input) []Factor {
	_, factors := evaluate(in)
	return factors
}

// MonthlyCalls is the call volume the scoring table works from.
func MonthlyCalls(in Input) int {
	return in.AvgCallsPerDay * workingDaysPerMonth
}

// HighCaseValueRecommendation renders the case-value advice for a given value.
func HighCaseValueRecommendation(avgCaseValue float64) string {
	return fmt.Sprintf("High case value ($%s) means every missed call is expensive.", formatDollars(avgCaseValue))
}

func evaluate(in Input) (Result, []Factor) {
	monthlyCalls := MonthlyCalls(in)
	missRatePct := baseMissRatePct
	riskScore := 0
	var factors []Factor

	add := func(f Factor) {
		missRatePct += f.MissRatePoints
		riskScore += f.ScorePoints
		factors = append(factors, f)
	}

	if in.ReceptionConfig == ReceptionMultitasking {
		add(Factor{Code: FactorMultitaskingReception, ScorePoints: 25, MissRatePoints: 15, Recommendation: RecommendationMultitasking})
	}

	switch in.LeadFollowUpTime {
	case FollowUpNextDay:
		add(Factor{Code: FactorNextDayFollowUp, ScorePoints: 25, MissRatePoints: 15, Recommendation: RecommendationNextDay})
	case FollowUpSameDay, FollowUpUnder1Hour:
		add(Factor{Code: FactorDelayedFollowUp, ScorePoints: 10, MissRatePoints: 5})
	}

	switch in.MissedCallsStrategy {
	case StrategyNothing:
		add(Factor{Code: FactorNoMissedCallPlan, ScorePoints: 30, MissRatePoints: 15, Recommendation: RecommendationNothing})
	case StrategyVoicemail:
		add(Factor{Code: FactorVoicemail, ScorePoints: 15, MissRatePoints: 10, Recommendation: RecommendationVoicemail})
	}

	if in.RunsAds {
		add(Factor{Code: FactorPaidAds, ScorePoints: 10, Recommendation: RecommendationPaidAds})
	}

	missedCalls := roundHalfUp(float64(monthlyCalls*missRatePct) / 100)
	lostPatients := roundHalfUp(float64(missedCalls*conversionRatePct) / 100)
	revenue := float64(lostPatients) * in.AvgCaseValue

	if revenue > highRevenueThreshold {
		add(Factor{Code: FactorHighCaseValue, ScorePoints: 20, Recommendation: HighCaseValueRecommendation(in.AvgCaseValue)})
	}

	if riskScore > maxRiskScore {
		riskScore = maxRiskScore
	}

	recommendations := make([]string, 0, len(factors))
	for _, f := range factors {
		if f.Recommendation != "" {
			recommendations = append(recommendations, f.Recommendation)
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, RecommendationCoverage)
	}

	return Result{
		RiskScore:                 riskScore,
		MissedCallsPerMonth:       missedCalls,
		PotentialRevenueRecovered: revenue,
		RiskLevel:                 LevelForScore(riskScore),
		Recommendations:           recommendations,
	}, factors
}

// LevelForScore applies the HIGH/MEDIUM/LOW cutoffs.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= highRiskThreshold:
		return RiskHigh
	case score >= mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// roundHalfUp rounds .5 toward positive infinity. Rates are summed exactly, so a
// value sitting on a .5 boundary can land one higher than float accumulation gives.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// formatDollars renders 4500 as "4,500" and 1234.5 as "1,234.50".
func formatDollars(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	digits := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if rem := cents % 100; rem > 0 {
		fmt.Fprintf(&b, ".%02d", rem)
	}
	return b.String()
}
