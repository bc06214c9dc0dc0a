package keyboard

import (
	"context"
	"time"
)

// Selectors used to locate the keyboard in the view hierarchy
const (
	// KeyPlaneSelector matches the active layout surface of a docked or undocked keyboard
	KeyPlaneSelector = "view:'UIKBKeyplaneView'"

	// KeyViewSelector matches individual keys; split keyboards only expose these
	KeyViewSelector = "view:'UIKBKeyView'"
)

// Querier reads the live view hierarchy
type Querier interface {
	Query(ctx context.Context, selector string) ([]Element, error)
}

// GestureChannel executes touch gestures through the automation backend
type GestureChannel interface {
	// ModeKeyRect returns the frame of the keyboard's mode ("Hide keyboard") key
	ModeKeyRect(ctx context.Context) (Rect, error)
	Drag(ctx context.Context, drag Drag) error
}

// DeviceInfo exposes device class and screen geometry
type DeviceInfo interface {
	IsPhoneLike(ctx context.Context) (bool, error)
	ScreenMetrics(ctx context.Context) (ScreenMetrics, error)
	Orientation(ctx context.Context) (Orientation, error)
	ModeChangeUnsupported(ctx context.Context) (bool, error)
}

// Diagnostics records failure evidence
type Diagnostics interface {
	// CaptureScreenshot saves a screenshot and returns where it was stored
	CaptureScreenshot(ctx context.Context, reason string) (string, error)
}

// Drag is a long-press followed by a pan to another point
type Drag struct {
	From Point
	To   Point
	Hold time.Duration
}

type noDiagnostics struct{}

func (noDiagnostics) CaptureScreenshot(context.Context, string) (string, error) {
	return "", nil
}
