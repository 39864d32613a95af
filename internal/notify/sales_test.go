package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/novavoice/nova-voice/internal/assessment"
	"github.com/novavoice/nova-voice/internal/events"
	"github.com/novavoice/nova-voice/internal/leads"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func assessmentEntry(t *testing.T, in assessment.Input) events.OutboxEntry {
	t.Helper()
	rec := assessment.NewRecord(in, assessment.Score(in))
	payload, err := json.Marshal(assessment.CompletedEvent{Record: rec, Factors: assessment.Breakdown(in)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return events.OutboxEntry{ID: uuid.New(), Type: assessment.EventTypeCompleted, Payload: payload}
}

func hotInput() assessment.Input {
	return assessment.Input{
		ClinicName:          "Test Ortho",
		AvgCallsPerDay:      40,
		ReceptionConfig:     assessment.ReceptionMultitasking,
		LeadFollowUpTime:    assessment.FollowUpNextDay,
		RunsAds:             true,
		MissedCallsStrategy: assessment.StrategyNothing,
		AvgCaseValue:        4500,
	}
}

func TestSalesNotifier_HotAssessment(t *testing.T) {
	sender := &recordingSender{}
	n := NewSalesNotifier(sender, "sales@novavoice.ai", 0, nil)

	if err := n.Handle(context.Background(), assessmentEntry(t, hotInput())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "sales@novavoice.ai" {
		t.Errorf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Hot assessment: Test Ortho (HIGH, 100/100)" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Risk factors:") || !strings.Contains(msg.Body, "$117000/month") {
		t.Errorf("body missing breakdown: %s", msg.Body)
	}
}

func TestSalesNotifier_SkipsColdAssessment(t *testing.T) {
	sender := &recordingSender{}
	n := NewSalesNotifier(sender, "sales@novavoice.ai", 60, nil)

	cold := assessment.Input{
		ClinicName:          "Calm Dental",
		AvgCallsPerDay:      10,
		ReceptionConfig:     assessment.ReceptionDedicated,
		LeadFollowUpTime:    assessment.FollowUpUnder5Min,
		MissedCallsStrategy: assessment.StrategyAnsweringService,
		AvgCaseValue:        1000,
	}
	if err := n.Handle(context.Background(), assessmentEntry(t, cold)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email for a low score, got %d", len(sender.sent))
	}
}

func TestSalesNotifier_StrategyCall(t *testing.T) {
	sender := &recordingSender{}
	n := NewSalesNotifier(sender, "sales@novavoice.ai", 60, nil)

	payload, _ := json.Marshal(leads.RequestedEvent{Lead: &leads.Lead{
		ID: "lead-1", Name: "Dr. Jane", Email: "jane@example.com",
		CalendarSystem: "Dentrix", PatientVolume: "11-25", Status: leads.StatusPending,
	}})
	entry := events.OutboxEntry{ID: uuid.New(), Type: leads.EventTypeRequested, Payload: payload}

	if err := n.Handle(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].Body, "Calendar system: Dentrix") {
		t.Fatalf("unexpected emails %+v", sender.sent)
	}

	sender.err = errors.New("smtp down")
	err := n.Handle(context.Background(), entry)
	if err == nil {
		t.Fatal("send failure must be returned so the outbox retries")
	}
	if events.IsPermanent(err) {
		t.Fatalf("transient failure marked permanent: %v", err)
	}

	sender.err = fmt.Errorf("%w: sendgrid status 401", ErrRejected)
	if err := n.Handle(context.Background(), entry); !events.IsPermanent(err) {
		t.Fatalf("provider rejection should be permanent, got %v", err)
	}
}

func TestSalesNotifier_IgnoresUnknownAndBadPayloads(t *testing.T) {
	sender := &recordingSender{}
	n := NewSalesNotifier(sender, "sales@novavoice.ai", 60, nil)

	if err := n.Handle(context.Background(), events.OutboxEntry{Type: "something.else"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Handle(context.Background(), events.OutboxEntry{Type: leads.EventTypeRequested, Payload: []byte("{")}); err != nil {
		t.Fatalf("bad payload should be dropped, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(sender.sent))
	}

	if err := NewSalesNotifier(sender, "", 60, nil).Handle(context.Background(), assessmentEntry(t, hotInput())); err != nil {
		t.Fatalf("unconfigured notifier should no-op, got %v", err)
	}
}
