package site

import "fmt"

// View is one of the page's top-level screens.
type View string

const (
	ViewLanding    View = "landing"
	ViewAssessment View = "assessment"
	ViewResults    View = "results"
)

// Event drives a view change.
type Event string

const (
	EventStartAssessment    Event = "start_assessment"
	EventCompleteAssessment Event = "complete_assessment"
	EventExitAssessment     Event = "exit_assessment"
	EventRestart            Event = "restart"
)

var transitions = map[View]map[Event]View{
	ViewLanding: {
		EventStartAssessment: ViewAssessment,
	},
	ViewAssessment: {
		EventCompleteAssessment: ViewResults,
		EventExitAssessment:     ViewLanding,
	},
	ViewResults: {
		EventRestart:         ViewLanding,
		EventStartAssessment: ViewAssessment,
	},
}

// ViewRouter is a finite-state router over the three views.
type ViewRouter struct {
	current View
}

// NewViewRouter starts on the landing view.
func NewViewRouter() *ViewRouter {
	return &ViewRouter{current: ViewLanding}
}

// RestoreViewRouter resumes at v. Unknown views fall back to landing.
func RestoreViewRouter(v View) *ViewRouter {
	if _, ok := transitions[v]; !ok {
		v = ViewLanding
	}
	return &ViewRouter{current: v}
}

func (r *ViewRouter) Current() View {
	return r.current
}

// Can reports whether e is allowed from the current view.
func (r *ViewRouter) Can(e Event) bool {
	_, ok := transitions[r.current][e]
	return ok
}

// Fire applies e. The current view is unchanged on error.
func (r *ViewRouter) Fire(e Event) (View, error) {
	next, ok := transitions[r.current][e]
	if !ok {
		return r.current, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e, r.current)
	}
	r.current = next
	return next, nil
}
