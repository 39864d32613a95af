package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/novavoice/nova-voice/internal/assessment"
	"github.com/novavoice/nova-voice/internal/events"
	"github.com/novavoice/nova-voice/internal/leads"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// DefaultHotLeadMinScore is the risk score at which an assessment is mailed to sales.
const DefaultHotLeadMinScore = 60

// SalesNotifier emails the sales inbox about new strategy calls and hot
// assessments. It is an events.DeliveryHandler.
type SalesNotifier struct {
	email    EmailSender
	to       string
	minScore int
	logger   *logging.Logger
}

func NewSalesNotifier(email EmailSender, to string, minScore int, logger *logging.Logger) *SalesNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if minScore <= 0 {
		minScore = DefaultHotLeadMinScore
	}
	return &SalesNotifier{email: email, to: strings.TrimSpace(to), minScore: minScore, logger: logger}
}

// Handle sends at most one email per entry. Unknown event types are ignored.
func (n *SalesNotifier) Handle(ctx context.Context, entry events.OutboxEntry) error {
	if n.email == nil || n.to == "" {
		return nil
	}
	var (
		msg EmailMessage
		ok  bool
		err error
	)
	switch entry.Type {
	case assessment.EventTypeCompleted:
		msg, ok, err = n.assessmentMessage(entry.Payload)
	case leads.EventTypeRequested:
		msg, ok, err = n.strategyCallMessage(entry.Payload)
	default:
		return nil
	}
	if err != nil {
		// a payload we cannot decode will never succeed; drop it
		n.logger.Error("notify: undecodable outbox payload", "error", err, "event_id", entry.ID, "type", entry.Type)
		return nil
	}
	if !ok {
		return nil
	}
	msg.To = n.to
	if err := n.email.Send(ctx, msg); err != nil {
		err = fmt.Errorf("notify: sales email: %w", err)
		if errors.Is(err, ErrRejected) || errors.Is(err, errIncompleteMessage) {
			return events.Permanent(err)
		}
		return err
	}
	return nil
}

func (n *SalesNotifier) assessmentMessage(payload []byte) (EmailMessage, bool, error) {
	var evt assessment.CompletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return EmailMessage{}, false, err
	}
	if evt.Record == nil {
		return EmailMessage{}, false, fmt.Errorf("assessment event without record")
	}
	rec := evt.Record
	if rec.RiskScore < n.minScore {
		return EmailMessage{}, false, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s completed the missed-call risk assessment.\n\n", rec.ClinicName)
	fmt.Fprintf(&b, "Risk: %s (%d/100)\n", rec.RiskLevel, rec.RiskScore)
	fmt.Fprintf(&b, "Potential revenue recovered: $%.0f/month\n", rec.PotentialRevenue)
	fmt.Fprintf(&b, "Daily calls: %d\n", rec.DailyCalls)
	fmt.Fprintf(&b, "Average case value: $%.0f\n", rec.AvgCaseValue)
	fmt.Fprintf(&b, "Reception: %s\nMissed calls: %s\nLead follow-up: %s\nRuns ads: %t\n",
		rec.ReceptionConfig, rec.MissedCallStrategy, rec.LeadFollowUpTime, rec.RunAds)
	if len(evt.Factors) > 0 {
		b.WriteString("\nRisk factors:\n")
		for _, f := range evt.Factors {
			fmt.Fprintf(&b, "- %s: +%d score, +%d%% miss rate\n", f.Code, f.ScorePoints, f.MissRatePoints)
		}
	}

	return EmailMessage{
		Subject:  fmt.Sprintf("Hot assessment: %s (%s, %d/100)", rec.ClinicName, rec.RiskLevel, rec.RiskScore),
		Body:     b.String(),
		Category: "hot_assessment",
	}, true, nil
}

func (n *SalesNotifier) strategyCallMessage(payload []byte) (EmailMessage, bool, error) {
	var evt leads.RequestedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return EmailMessage{}, false, err
	}
	if evt.Lead == nil {
		return EmailMessage{}, false, fmt.Errorf("strategy call event without lead")
	}
	lead := evt.Lead
	body := fmt.Sprintf("New strategy call request.\n\nName: %s\nEmail: %s\nCalendar system: %s\nClinic size (employees): %s\n",
		lead.Name, lead.Email, lead.CalendarSystem, lead.PatientVolume)
	return EmailMessage{
		Subject:  fmt.Sprintf("Strategy call request: %s", lead.Name),
		Body:     body,
		ReplyTo:  lead.Email,
		Category: "strategy_call",
	}, true, nil
}

var _ events.DeliveryHandler = (*SalesNotifier)(nil)
