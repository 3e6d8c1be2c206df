package workflow

import (
	"errors"
	"fmt"
)

// Phase identifies which category of collaborator operation is in flight.
// The failure handler selects its diagnostic playbook by the phase that was
// active when the error surfaced.
type Phase int

const (
	// PhaseIdle covers every operation with no dedicated playbook.
	PhaseIdle Phase = iota

	// PhaseCherryPick is active while commits are being applied.
	PhaseCherryPick

	// PhaseLogQuery is active while commit history is being retrieved.
	PhaseLogQuery
)

func (p Phase) String() string {
	switch p {
	case PhaseCherryPick:
		return "cherry-pick"
	case PhaseLogQuery:
		return "log-query"
	default:
		return "idle"
	}
}

// ErrDeclined is returned when the user answers no to a required
// confirmation. The run aborts with exit code 1 and no further side effects.
var ErrDeclined = errors.New("declined confirmation")

// StepError attaches the active phase to a failed collaborator operation so
// the caller can print the matching guidance.
type StepError struct {
	Phase Phase
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
