package leads

import (
	"context"
	"fmt"
	"sync"
)

// FormState is the local state of the strategy-call form.
type FormState string

const (
	FormIdle       FormState = "idle"
	FormProcessing FormState = "processing"
	FormSuccess    FormState = "success"
)

// Form tracks one strategy-call form through a single submit attempt.
// A failed save returns the form to idle; a successful one is terminal.
type Form struct {
	mu    sync.Mutex
	state FormState
	lead  *Lead
}

func NewForm() *Form {
	return &Form{state: FormIdle}
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Lead returns the saved lead once the form reached success.
func (f *Form) Lead() *Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lead
}

// Submit runs save once. Errors from save come back wrapped in
// ErrSubmissionFailed with the cause still reachable through errors.Is.
func (f *Form) Submit(ctx context.Context, save func(context.Context) (*Lead, error)) (*Lead, error) {
	f.mu.Lock()
	switch f.state {
	case FormProcessing:
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case FormSuccess:
		f.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	f.state = FormProcessing
	f.mu.Unlock()

	lead, err := save(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormIdle
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	f.state = FormSuccess
	f.lead = lead
	return lead, nil
}
