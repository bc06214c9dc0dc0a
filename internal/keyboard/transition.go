package keyboard

import "fmt"

// Step is one action in a mode transition
type Step int

const (
	// StepDragToTopRow long-presses the mode key and releases on the top popup option
	StepDragToTopRow Step = iota + 1
	// StepDragToBottomRow long-presses the mode key and releases on the bottom popup option
	StepDragToBottomRow
	// StepWaitForDocked blocks until the keyboard is confirmed docked
	StepWaitForDocked
)

func (s Step) String() string {
	switch s {
	case StepDragToTopRow:
		return "drag-to-top"
	case StepDragToBottomRow:
		return "drag-to-bottom"
	case StepWaitForDocked:
		return "wait-for-docked"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Transition returns the steps that move the keyboard from one mode to
// another. The top popup row cannot be hit reliably while the keyboard is
// split, so leaving split always goes through docked first.
func Transition(from, to Mode) ([]Step, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("invalid target keyboard mode: %s", to)
	}
	if from == to {
		return nil, nil
	}

	switch from {
	case ModeDocked:
		switch to {
		case ModeUndocked:
			return []Step{StepDragToTopRow}, nil
		case ModeSplit:
			return []Step{StepDragToBottomRow}, nil
		case ModeDocked, ModeUnknown:
			return nil, noTransition(from, to)
		}
	case ModeUndocked:
		switch to {
		case ModeDocked:
			return []Step{StepDragToTopRow}, nil
		case ModeSplit:
			return []Step{StepDragToBottomRow}, nil
		case ModeUndocked, ModeUnknown:
			return nil, noTransition(from, to)
		}
	case ModeSplit:
		switch to {
		case ModeDocked:
			// "Dock and Merge" is the bottom option, which already lands on the target
			return []Step{StepDragToBottomRow, StepWaitForDocked}, nil
		case ModeUndocked:
			return []Step{StepDragToBottomRow, StepWaitForDocked, StepDragToTopRow}, nil
		case ModeSplit, ModeUnknown:
			return nil, noTransition(from, to)
		}
	case ModeUnknown:
		return nil, fmt.Errorf("cannot change keyboard to %s: %w", to, ErrNoVisibleKeyboard)
	}

	return nil, noTransition(from, to)
}

func noTransition(from, to Mode) error {
	return fmt.Errorf("no transition from %s to %s", from, to)
}
