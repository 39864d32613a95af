package assessment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Writer is the insert-only persistence collaborator.
type Writer interface {
	Insert(ctx context.Context, rec *Record) error
}

// Reader lists saved assessments for exports.
type Reader interface {
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// ListFilter narrows an export. Zero values mean no restriction.
type ListFilter struct {
	Since      time.Time
	RiskLevels []RiskLevel
	Limit      int
}

func (f ListFilter) matches(rec *Record) bool {
	if !f.Since.IsZero() && rec.CreatedAt.Before(f.Since) {
		return false
	}
	if len(f.RiskLevels) == 0 {
		return true
	}
	for _, level := range f.RiskLevels {
		if rec.RiskLevel == level {
			return true
		}
	}
	return false
}

// MemoryRepository keeps records in process. Used for local runs and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert appends a copy of rec.
func (r *MemoryRepository) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("assessment: record required")
	}
	r.mu.Lock()
	r.records = append(r.records, *rec)
	r.mu.Unlock()
	return nil
}

// List returns matching records, newest first.
func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for i := range r.records {
		if filter.matches(&r.records[i]) {
			out = append(out, r.records[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
