package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

func testDemoForm() site.DemoForm {
	return site.DemoForm{
		CalendarSystems: []string{"Dentrix", "Eaglesoft", "Open Dental", "Curve Dental", "Other"},
		PatientVolumes:  []string{"1-10", "11-25", "26-50", "51+"},
	}
}

func newTestHandler(repo Repository) *Handler {
	logger := logging.Default()
	return NewHandler(NewService(repo, testDemoForm(), logger), logger)
}

func TestCreateStrategyCall_Success(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	reqBody := CreateLeadRequest{
		Name:           "Dr. Jane Smith",
		Email:          "jane@brightsmiles.com",
		CalendarSystem: "Open Dental",
		PatientVolume:  "26-50",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/strategy-calls", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateStrategyCall(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State != FormSuccess {
		t.Errorf("expected state success, got %s", resp.State)
	}
	if resp.Lead == nil || resp.Lead.Name != reqBody.Name || resp.Lead.Status != StatusPending {
		t.Fatalf("unexpected lead %+v", resp.Lead)
	}
	if resp.Lead.CalendarSystem != "Open Dental" {
		t.Errorf("expected calendar system Open Dental, got %s", resp.Lead.CalendarSystem)
	}
}

func TestCreateStrategyCall_DefaultsSelects(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	body := `{"name":"Sam","email":"sam@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/strategy-calls", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateStrategyCall(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Lead.CalendarSystem != "Dentrix" || resp.Lead.PatientVolume != "1-10" {
		t.Fatalf("expected first options, got %+v", resp.Lead)
	}
}

func TestCreateStrategyCall_InvalidRequest(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	cases := map[string]CreateLeadRequest{
		"missing name":     {Email: "a@example.com"},
		"missing email":    {Name: "A"},
		"bad email":        {Name: "A", Email: "not-an-email"},
		"unknown calendar": {Name: "A", Email: "a@example.com", CalendarSystem: "Paper"},
		"unknown volume":   {Name: "A", Email: "a@example.com", PatientVolume: "lots"},
	}
	for name, reqBody := range cases {
		t.Run(name, func(t *testing.T) {
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/strategy-calls", bytes.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateStrategyCall(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			var resp SubmitResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.State != FormIdle || resp.Error == "" {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestCreateStrategyCall_InvalidJSON(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/strategy-calls", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.CreateStrategyCall(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

type failingRepository struct{}

func (f failingRepository) Create(context.Context, *CreateLeadRequest) (*Lead, error) {
	return nil, errors.New("boom")
}

func (f failingRepository) GetByID(context.Context, string) (*Lead, error) {
	return nil, ErrLeadNotFound
}

func TestCreateStrategyCall_RepositoryError(t *testing.T) {
	handler := newTestHandler(failingRepository{})

	payload := CreateLeadRequest{
		Name:  "Failing Repo",
		Email: "fail@example.com",
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/strategy-calls", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateStrategyCall(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected %d, got %d", http.StatusBadGateway, w.Code)
	}
	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State != FormIdle || resp.Error != ErrSubmissionFailed.Error() {
		t.Fatalf("expected generic alert in idle state, got %+v", resp)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatal("storage error leaked to the client")
	}
}

func TestRepository_Create(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := &CreateLeadRequest{
		Name:           "Jane Smith",
		Email:          "jane@example.com",
		CalendarSystem: "Dentrix",
		PatientVolume:  "11-25",
	}

	lead, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.ID == "" {
		t.Error("expected lead ID to be set")
	}
	if lead.Status != StatusPending {
		t.Errorf("expected pending status, got %s", lead.Status)
	}
	if lead.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	found, err := repo.GetByID(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != lead.ID {
		t.Errorf("expected ID %s, got %s", lead.ID, found.ID)
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}
