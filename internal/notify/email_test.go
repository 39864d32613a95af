package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Nova AI Voice" {
		t.Errorf("expected default from name 'Nova AI Voice', got %q", sender.fromName)
	}
}

func TestSendGridSender_SendToHost(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "sg-key",
		FromEmail: "hello@novavoice.ai",
		Host:      srv.URL,
	}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "sales@novavoice.ai",
		Subject:  "Strategy call request: Jane",
		Body:     "New strategy call request.",
		ReplyTo:  "jane@brightsmiles.com",
		Category: "strategy_call",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v3/mail/send" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer sg-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	for _, want := range []string{"sales@novavoice.ai", "jane@brightsmiles.com", "strategy_call"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("%q missing from body: %s", want, gotBody)
		}
	}
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "bad", FromEmail: "a@b.c", Host: srv.URL}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Subject: "s", Body: "b"})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected 401 to be a rejection, got %v", err)
	}
}

func TestSendGridSender_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "k", FromEmail: "a@b.c", Host: srv.URL}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Subject: "s", Body: "b"})
	if err == nil || errors.Is(err, ErrRejected) {
		t.Fatalf("expected retryable error for 503, got %v", err)
	}
}

func TestSendGridSender_PlainTextOnlyWithoutHTML(t *testing.T) {
	var payload struct {
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "k", FromEmail: "hello@novavoice.ai", Host: srv.URL}, nil)
	err := sender.Send(context.Background(), EmailMessage{
		To:      "sales@novavoice.ai",
		Subject: "Strategy call request",
		Body:    "Name: <script>alert(1)</script>\nEmail: x@y.z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Content) != 1 || payload.Content[0].Type != "text/plain" {
		t.Fatalf("expected a single text/plain part, got %+v", payload.Content)
	}
	for _, c := range payload.Content {
		if c.Type == "text/html" && strings.Contains(c.Value, "<script>") {
			t.Fatalf("user text leaked into the HTML part: %q", c.Value)
		}
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})
	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
	if sent := sender.Sent(); len(sent) != 1 || sent[0].Subject != "Test Subject" {
		t.Errorf("expected the message to be kept, got %+v", sent)
	}
}

func TestSendersRejectIncompleteMessages(t *testing.T) {
	senders := map[string]EmailSender{
		"stub": NewStubEmailSender(nil),
		"ses":  NewSESSender(&mockSES{}, SESConfig{FromEmail: "hello@novavoice.ai"}, nil),
	}
	for name, sender := range senders {
		if err := sender.Send(context.Background(), EmailMessage{To: "a@b.c"}); !errors.Is(err, errIncompleteMessage) {
			t.Errorf("%s: expected incomplete message error, got %v", name, err)
		}
	}
}

type mockSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &mockSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "hello@novavoice.ai", ConfigurationSet: "sales"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "sales@novavoice.ai",
		Subject:  "Hot assessment",
		Body:     "plain",
		HTML:     "<p>html</p>",
		Category: "hot_assessment",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(client.input.FromEmailAddress); got != `"Nova AI Voice" <hello@novavoice.ai>` {
		t.Errorf("unexpected from %q", got)
	}
	if client.input.Destination.ToAddresses[0] != "sales@novavoice.ai" {
		t.Errorf("unexpected destination %v", client.input.Destination.ToAddresses)
	}
	if aws.ToString(client.input.ConfigurationSetName) != "sales" {
		t.Errorf("expected configuration set, got %v", client.input.ConfigurationSetName)
	}
	if len(client.input.EmailTags) != 1 || aws.ToString(client.input.EmailTags[0].Value) != "hot_assessment" {
		t.Errorf("expected category tag, got %+v", client.input.EmailTags)
	}
	body := client.input.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "plain" || aws.ToString(body.Html.Data) != "<p>html</p>" {
		t.Errorf("unexpected body %+v", body)
	}

	client.err = errors.New("throttled")
	if err := sender.Send(context.Background(), EmailMessage{To: "a@b.c", Subject: "s"}); err == nil {
		t.Fatal("expected SES error")
	}
}

func TestSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Fatal("expected nil sender without client")
	}
}

