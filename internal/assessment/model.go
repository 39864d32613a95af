package assessment

// ReceptionConfig describes who answers the clinic phone.
type ReceptionConfig string

const (
	ReceptionDedicated    ReceptionConfig = "dedicated"
	ReceptionMultitasking ReceptionConfig = "multitasking"
)

// FollowUpTime is how quickly new leads hear back from the clinic.
type FollowUpTime string

const (
	FollowUpUnder5Min  FollowUpTime = "under_5_min"
	FollowUpUnder1Hour FollowUpTime = "under_1_hour"
	FollowUpSameDay    FollowUpTime = "same_day"
	FollowUpNextDay    FollowUpTime = "next_day"
)

// MissedCallStrategy is what happens to a call nobody picks up.
type MissedCallStrategy string

const (
	StrategyVoicemail        MissedCallStrategy = "voicemail"
	StrategyAnsweringService MissedCallStrategy = "answering_service"
	StrategyNothing          MissedCallStrategy = "nothing"
)

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ReceptionConfigs lists every reception option in display order.
func ReceptionConfigs() []ReceptionConfig {
	return []ReceptionConfig{ReceptionDedicated, ReceptionMultitasking}
}

// FollowUpTimes lists every follow-up option in display order.
func FollowUpTimes() []FollowUpTime {
	return []FollowUpTime{FollowUpUnder5Min, FollowUpUnder1Hour, FollowUpSameDay, FollowUpNextDay}
}

// MissedCallStrategies lists every missed-call option in display order.
func MissedCallStrategies() []MissedCallStrategy {
	return []MissedCallStrategy{StrategyVoicemail, StrategyAnsweringService, StrategyNothing}
}

// Input is the questionnaire answers, collected one step at a time.
type Input struct {
	ClinicName          string             `json:"clinic_name"`
	AvgCallsPerDay      int                `json:"avg_calls_per_day"`
	ReceptionConfig     ReceptionConfig    `json:"reception_config"`
	LeadFollowUpTime    FollowUpTime       `json:"lead_follow_up_time"`
	RunsAds             bool               `json:"runs_ads"`
	MissedCallsStrategy MissedCallStrategy `json:"missed_calls_strategy"`
	AvgCaseValue        float64            `json:"avg_case_value"`
}

// DefaultInput returns the answers a fresh questionnaire starts with.
func DefaultInput() Input {
	return Input{
		AvgCallsPerDay:      40,
		ReceptionConfig:     ReceptionMultitasking,
		LeadFollowUpTime:    FollowUpUnder1Hour,
		RunsAds:             false,
		MissedCallsStrategy: StrategyVoicemail,
		AvgCaseValue:        4500,
	}
}

// Result is the scored outcome of an Input. It is never modified after Score
// returns it.
type Result struct {
	RiskScore                 int       `json:"risk_score"`
	MissedCallsPerMonth       int       `json:"missed_calls_per_month"`
	PotentialRevenueRecovered float64   `json:"potential_revenue_recovered"`
	RiskLevel                 RiskLevel `json:"risk_level"`
	Recommendations           []string  `json:"recommendations"`
}

// Clone returns a deep copy so callers cannot alias the recommendations slice.
func (r Result) Clone() Result {
	out := r
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return out
}
