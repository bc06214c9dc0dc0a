package keyboard

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVisibleKeyboard is returned by strict mode queries when no keyboard is on screen
	ErrNoVisibleKeyboard = errors.New("no visible keyboard")

	// ErrNotApplicable marks operations the device class structurally lacks
	ErrNotApplicable = errors.New("not applicable on this device")
)

// NotApplicableError is returned when a mode operation is invoked on a
// phone-like device, which only ever shows a docked keyboard.
type NotApplicableError struct {
	Operation string
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("%s: keyboard modes are %s", e.Operation, ErrNotApplicable)
}

// Is lets errors.Is match ErrNotApplicable
func (e *NotApplicableError) Is(target error) bool {
	return target == ErrNotApplicable
}

// KeyboardModeError reports that the platform does not allow switching
// keyboard modes through automation. It is a capability limit and must not
// be retried.
type KeyboardModeError struct {
	Current Mode
	Target  Mode
	Reason  string
}

func (e *KeyboardModeError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "keyboard mode switching is not supported on this OS version"
	}
	return fmt.Sprintf("cannot change keyboard from %s to %s: %s", e.Current, e.Target, reason)
}

// AmbiguousStateError is returned when a query that identifies the keyboard
// matches more elements than a single keyboard can have.
type AmbiguousStateError struct {
	Selector string
	Count    int
}

func (e *AmbiguousStateError) Error() string {
	return fmt.Sprintf("ambiguous keyboard state: %q matched %d elements, expected at most 1", e.Selector, e.Count)
}

// TransitionTimeoutError reports a target mode that was never observed before
// the poll deadline. It wraps the underlying *wait.TimeoutError.
type TransitionTimeoutError struct {
	Target      Mode
	Observed    Mode
	Orientation Orientation
	Screenshot  string
	Err         error
}

func (e *TransitionTimeoutError) Error() string {
	msg := fmt.Sprintf("expected %s keyboard, observed %s (orientation %s)", e.Target, e.Observed, e.Orientation)
	if e.Screenshot != "" {
		msg += fmt.Sprintf(" [screenshot: %s]", e.Screenshot)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransitionTimeoutError) Unwrap() error {
	return e.Err
}
