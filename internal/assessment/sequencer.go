package assessment

import (
	"fmt"
	"math"
)

// Step is a 1-based questionnaire position.
type Step int

const (
	StepClinicName Step = iota + 1
	StepCallVolume
	StepReception
	StepFollowUp
	StepAds
	StepMissedCalls
	StepCaseValue
)

const (
	FirstStep = StepClinicName
	LastStep  = StepCaseValue
)

// Field names one answer of the questionnaire.
type Field string

const (
	FieldClinicName          Field = "clinic_name"
	FieldAvgCallsPerDay      Field = "avg_calls_per_day"
	FieldReceptionConfig     Field = "reception_config"
	FieldLeadFollowUpTime    Field = "lead_follow_up_time"
	FieldRunsAds             Field = "runs_ads"
	FieldMissedCallsStrategy Field = "missed_calls_strategy"
	FieldAvgCaseValue        Field = "avg_case_value"
)

// FieldForStep returns the answer collected on step.
func FieldForStep(step Step) (Field, bool) {
	switch step {
	case StepClinicName:
		return FieldClinicName, true
	case StepCallVolume:
		return FieldAvgCallsPerDay, true
	case StepReception:
		return FieldReceptionConfig, true
	case StepFollowUp:
		return FieldLeadFollowUpTime, true
	case StepAds:
		return FieldRunsAds, true
	case StepMissedCalls:
		return FieldMissedCallsStrategy, true
	case StepCaseValue:
		return FieldAvgCaseValue, true
	default:
		return "", false
	}
}

// State is the serializable form of a Sequencer.
type State struct {
	Step      Step  `json:"step"`
	Input     Input `json:"input"`
	Completed bool  `json:"completed"`
}

// Sequencer walks the seven questions in order. Exactly one step is current at
// a time; advancing past the last step fires the completion callback once.
type Sequencer struct {
	step       Step
	input      Input
	completed  bool
	onComplete func(Input)
}

// NewSequencer starts at step 1 with default answers.
func NewSequencer(onComplete func(Input)) *Sequencer {
	return &Sequencer{
		step:       FirstStep,
		input:      DefaultInput(),
		onComplete: onComplete,
	}
}

// RestoreSequencer rebuilds a sequencer from a stored State.
func RestoreSequencer(state State, onComplete func(Input)) *Sequencer {
	step := state.Step
	if step < FirstStep || step > LastStep {
		step = FirstStep
	}
	return &Sequencer{
		step:       step,
		input:      state.Input,
		completed:  state.Completed,
		onComplete: onComplete,
	}
}

// State snapshots the sequencer.
func (s *Sequencer) State() State {
	return State{Step: s.step, Input: s.input, Completed: s.completed}
}

// Step reports the current position.
func (s *Sequencer) Step() Step {
	return s.step
}

// Input returns a copy of the answers so far.
func (s *Sequencer) Input() Input {
	return s.input
}

// Completed reports whether the final step has fired.
func (s *Sequencer) Completed() bool {
	return s.completed
}

// CanAdvance mirrors the enabled state of the "next" button.
func (s *Sequencer) CanAdvance() bool {
	if s.completed {
		return false
	}
	return s.step != StepClinicName || s.input.ClinicName != ""
}

// Advance moves forward one step. On the last step it freezes the answers and
// invokes the completion callback instead; done reports that case.
func (s *Sequencer) Advance() (done bool, err error) {
	if s.completed {
		return false, ErrSequenceCompleted
	}
	if s.step == StepClinicName && s.input.ClinicName == "" {
		return false, ErrClinicNameRequired
	}
	if s.step < LastStep {
		s.step++
		return false, nil
	}
	s.completed = true
	if s.onComplete != nil {
		s.onComplete(s.input)
	}
	return true, nil
}

// Retreat moves back one step. It reports false when nothing changed.
func (s *Sequencer) Retreat() bool {
	if s.completed || s.step <= FirstStep {
		return false
	}
	s.step--
	return true
}

// UpdateField merges one answer. Values are not range checked; only the Go
// type has to fit the field.
func (s *Sequencer) UpdateField(field Field, value any) error {
	if s.completed {
		return ErrSequenceCompleted
	}
	switch field {
	case FieldClinicName:
		v, ok := value.(string)
		if !ok {
			return invalidValue(field, value)
		}
		s.input.ClinicName = v
	case FieldAvgCallsPerDay:
		v, ok := toFloat(value)
		if !ok {
			return invalidValue(field, value)
		}
		s.input.AvgCallsPerDay = int(math.Trunc(v))
	case FieldReceptionConfig:
		v, ok := value.(string)
		if !ok {
			if rc, isRC := value.(ReceptionConfig); isRC {
				v, ok = string(rc), true
			}
		}
		if !ok {
			return invalidValue(field, value)
		}
		s.input.ReceptionConfig = ReceptionConfig(v)
	case FieldLeadFollowUpTime:
		v, ok := value.(string)
		if !ok {
			if ft, isFT := value.(FollowUpTime); isFT {
				v, ok = string(ft), true
			}
		}
		if !ok {
			return invalidValue(field, value)
		}
		s.input.LeadFollowUpTime = FollowUpTime(v)
	case FieldRunsAds:
		v, ok := value.(bool)
		if !ok {
			return invalidValue(field, value)
		}
		s.input.RunsAds = v
	case FieldMissedCallsStrategy:
		v, ok := value.(string)
		if !ok {
			if ms, isMS := value.(MissedCallStrategy); isMS {
				v, ok = string(ms), true
			}
		}
		if !ok {
			return invalidValue(field, value)
		}
		s.input.MissedCallsStrategy = MissedCallStrategy(v)
	case FieldAvgCaseValue:
		v, ok := toFloat(value)
		if !ok {
			return invalidValue(field, value)
		}
		s.input.AvgCaseValue = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func invalidValue(field Field, value any) error {
	return fmt.Errorf("%w: %s got %T", ErrInvalidFieldValue, field, value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
