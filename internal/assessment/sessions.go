package assessment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// Sessions drives page sessions: the view router, the step sequencer and the
// results slider, persisted in a SessionStore between requests.
type Sessions struct {
	store   SessionStore
	service *Service
	logger  *logging.Logger
	now     func() time.Time

	mu sync.Mutex
}

func NewSessions(store SessionStore, service *Service, logger *logging.Logger) *Sessions {
	if store == nil {
		panic("assessment: session store required")
	}
	if service == nil {
		panic("assessment: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sessions{store: store, service: service, logger: logger, now: time.Now}
}

// Start opens a session on the assessment view at step 1.
func (m *Sessions) Start(ctx context.Context) (*Session, error) {
	router := site.NewViewRouter()
	if _, err := router.Fire(site.EventStartAssessment); err != nil {
		return nil, err
	}
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		View:      router.Current(),
		Sequence:  NewSequencer(nil).State(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Begin re-enters the questionnaire from landing or results with fresh answers.
func (m *Sessions) Begin(ctx context.Context, id string) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		router := site.RestoreViewRouter(s.View)
		if _, err := router.Fire(site.EventStartAssessment); err != nil {
			return err
		}
		s.View = router.Current()
		s.Sequence = NewSequencer(nil).State()
		s.Result = nil
		s.MissRate = 0
		return nil
	})
}

// UpdateFields records answers on the current questionnaire. Either every
// value applies or none does.
func (m *Sessions) UpdateFields(ctx context.Context, id string, values map[Field]any) (*Session, error) {
	fields := make([]Field, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	return m.mutate(ctx, id, func(s *Session) error {
		seq, err := m.sequencer(s)
		if err != nil {
			return err
		}
		for _, f := range fields {
			if err := seq.UpdateField(f, values[f]); err != nil {
				return err
			}
		}
		s.Sequence = seq.State()
		return nil
	})
}

// Advance moves to the next step. Advancing past the last step scores the
// answers and switches to the results view. The background save starts only
// once the completed session is stored.
func (m *Sessions) Advance(ctx context.Context, id string) (*Session, error) {
	var completed *Input
	s, err := m.mutate(ctx, id, func(s *Session) error {
		seq, err := m.sequencer(s)
		if err != nil {
			return err
		}
		done, err := seq.Advance()
		if err != nil {
			return err
		}
		s.Sequence = seq.State()
		if !done {
			return nil
		}

		in := seq.Input()
		res := Score(in)
		router := site.RestoreViewRouter(s.View)
		if _, err := router.Fire(site.EventCompleteAssessment); err != nil {
			return err
		}
		s.View = router.Current()
		s.Result = &res
		s.MissRate = InitialDisplayMissRate(in, res)
		completed = &in
		return nil
	})
	if err != nil {
		return nil, err
	}
	if completed != nil {
		m.service.Record(ctx, *completed, *s.Result)
	}
	return s, nil
}

// Retreat moves back one step; at step 1 nothing changes.
func (m *Sessions) Retreat(ctx context.Context, id string) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		seq, err := m.sequencer(s)
		if err != nil {
			return err
		}
		seq.Retreat()
		s.Sequence = seq.State()
		return nil
	})
}

// SetMissRate moves the results slider. The stored result is left untouched.
func (m *Sessions) SetMissRate(ctx context.Context, id string, rate int) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		if s.Result == nil || s.View != site.ViewResults {
			return ErrNotCompleted
		}
		slider := NewSlider(s.Sequence.Input, *s.Result)
		slider.Set(rate)
		s.MissRate = slider.MissRate()
		return nil
	})
}

// Restart returns to the landing view and clears the answers.
func (m *Sessions) Restart(ctx context.Context, id string) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		router := site.RestoreViewRouter(s.View)
		event := site.EventRestart
		if s.View == site.ViewAssessment {
			event = site.EventExitAssessment
		}
		if _, err := router.Fire(event); err != nil {
			return err
		}
		s.View = router.Current()
		s.Sequence = NewSequencer(nil).State()
		s.Result = nil
		s.MissRate = 0
		return nil
	})
}

// Projection is the slider view of a completed session.
func (s *Session) Projection() (Projection, bool) {
	if s.Result == nil {
		return Projection{}, false
	}
	return Project(s.Sequence.Input, s.MissRate), true
}

func (m *Sessions) sequencer(s *Session) (*Sequencer, error) {
	if s.View != site.ViewAssessment {
		if s.Sequence.Completed {
			return nil, ErrSequenceCompleted
		}
		return nil, ErrNotOnAssessment
	}
	return RestoreSequencer(s.Sequence, nil), nil
}

func (m *Sessions) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
