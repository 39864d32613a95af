package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the insert-only strategy-call store. GetByID exists for
// follow-up tooling and tests.
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
}

// InMemoryRepository backs local runs without DATABASE_URL.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]Lead
	clock func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: map[string]Lead{}, clock: time.Now}
}

func (r *InMemoryRepository) Create(_ context.Context, req *CreateLeadRequest) (*Lead, error) {
	lead := Lead{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		CalendarSystem: req.CalendarSystem,
		PatientVolume:  req.PatientVolume,
		Status:         StatusPending,
		CreatedAt:      r.clock().UTC(),
	}
	r.mu.Lock()
	r.byID[lead.ID] = lead
	r.mu.Unlock()
	return &lead, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	lead, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrLeadNotFound
	}
	return &lead, nil
}
