// Package wizard models the linear verification flow the UI walks a
// user through, and isolates the vendor capture widget behind a small
// callback interface so nothing else depends on how capture works.
package wizard

import "fmt"

// Step is one state of the verification flow.
type Step int

const (
	// StepRegister collects the registration form.
	StepRegister Step = iota
	// StepAutomatedCheckFailed is entered when the initial automated
	// check could not verify the user and a document scan is needed.
	StepAutomatedCheckFailed
	// StepCaptureInProgress hands control to the vendor capture widget.
	StepCaptureInProgress
	// StepResults renders the match report.
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepRegister:
		return "register"
	case StepAutomatedCheckFailed:
		return "automated_check_failed"
	case StepCaptureInProgress:
		return "capture_in_progress"
	case StepResults:
		return "results"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// transitions lists the steps reachable from each step. The flow is
// strictly linear; there is no way back.
var transitions = map[Step][]Step{
	StepRegister:             {StepAutomatedCheckFailed},
	StepAutomatedCheckFailed: {StepCaptureInProgress},
	StepCaptureInProgress:    {StepResults},
	StepResults:              {},
}

// Flow tracks the current step of one verification attempt.
type Flow struct {
	current Step
}

// NewFlow starts at the registration step.
func NewFlow() *Flow {
	return &Flow{current: StepRegister}
}

// Current returns the step the flow is in.
func (f *Flow) Current() Step {
	return f.current
}

// Advance moves the flow to the given step, or returns an error when
// the transition is not defined.
func (f *Flow) Advance(to Step) error {
	for _, next := range transitions[f.current] {
		if next == to {
			f.current = to
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s", f.current, to)
}

// CaptureCallbacks is implemented by whatever hosts the vendor capture
// widget. The widget reports back exactly one of the two outcomes.
type CaptureCallbacks interface {
	// OnSuccess delivers the provider's transaction reference for the
	// completed capture.
	OnSuccess(reference string)
	// OnError delivers the vendor's failure reason, e.g. the user
	// cancelled or the widget could not connect.
	OnError(reason string)
}
