package assessment

import (
	"time"

	"github.com/google/uuid"
)

// Record is the row written to the assessments table once a questionnaire
// completes. Column names follow the table, not the Input JSON.
type Record struct {
	ID                 string             `json:"id"`
	ClinicName         string             `json:"clinic_name"`
	DailyCalls         int                `json:"daily_calls"`
	ReceptionConfig    ReceptionConfig    `json:"reception_config"`
	MissedCallStrategy MissedCallStrategy `json:"missed_call_strategy"`
	LeadFollowUpTime   FollowUpTime       `json:"lead_follow_up_time"`
	RunAds             bool               `json:"run_ads"`
	AvgCaseValue       float64            `json:"avg_case_value"`
	RiskScore          int                `json:"risk_score"`
	PotentialRevenue   float64            `json:"potential_revenue"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	CreatedAt          time.Time          `json:"created_at"`
}

// NewRecord pairs a finalized input with its scored result.
func NewRecord(in Input, res Result) *Record {
	return &Record{
		ID:                 uuid.NewString(),
		ClinicName:         in.ClinicName,
		DailyCalls:         in.AvgCallsPerDay,
		ReceptionConfig:    in.ReceptionConfig,
		MissedCallStrategy: in.MissedCallsStrategy,
		LeadFollowUpTime:   in.LeadFollowUpTime,
		RunAds:             in.RunsAds,
		AvgCaseValue:       in.AvgCaseValue,
		RiskScore:          res.RiskScore,
		PotentialRevenue:   res.PotentialRevenueRecovered,
		RiskLevel:          res.RiskLevel,
		CreatedAt:          time.Now().UTC(),
	}
}

// Input recovers the questionnaire answers stored on the record.
func (r *Record) Input() Input {
	return Input{
		ClinicName:          r.ClinicName,
		AvgCallsPerDay:      r.DailyCalls,
		ReceptionConfig:     r.ReceptionConfig,
		LeadFollowUpTime:    r.LeadFollowUpTime,
		RunsAds:             r.RunAds,
		MissedCallsStrategy: r.MissedCallStrategy,
		AvgCaseValue:        r.AvgCaseValue,
	}
}

// CompletedEvent is the outbox payload for a saved assessment.
type CompletedEvent struct {
	Record  *Record  `json:"record"`
	Factors []Factor `json:"factors"`
}

// EventTypeCompleted is the outbox type for CompletedEvent.
const EventTypeCompleted = "assessment.completed"
