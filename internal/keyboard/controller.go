package keyboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ferasOS/calabash-ios/internal/logger"
	"github.com/ferasOS/calabash-ios/internal/wait"
)

// Row selects an option in the mode key popup
type Row int

const (
	RowBottom Row = iota
	RowTop
)

func (r Row) String() string {
	switch r {
	case RowBottom:
		return "bottom"
	case RowTop:
		return "top"
	default:
		return fmt.Sprintf("Row(%d)", int(r))
	}
}

// Popup offsets from the mode key origin, tuned against real devices
const (
	DefaultBottomRowOffset = 35.0
	DefaultTopRowOffset    = 85.0
)

// Options configures the controller's waits and gestures
type Options struct {
	// KeyboardTimeout bounds the wait for any keyboard to appear
	KeyboardTimeout time.Duration
	// ModeTimeout bounds each wait for a mode to be confirmed
	ModeTimeout time.Duration
	// PollInterval is the delay between detector probes
	PollInterval time.Duration
	// PostSettle is slept after a wait succeeds
	PostSettle time.Duration
	// DragSettle is slept after every drag so the popup can dismiss
	DragSettle time.Duration
	// LongPress is how long the mode key is held before panning
	LongPress time.Duration

	BottomRowOffset float64
	TopRowOffset    float64
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		KeyboardTimeout: 10 * time.Second,
		ModeTimeout:     5 * time.Second,
		PollInterval:    200 * time.Millisecond,
		PostSettle:      0,
		DragSettle:      time.Second,
		LongPress:       time.Second,
		BottomRowOffset: DefaultBottomRowOffset,
		TopRowOffset:    DefaultTopRowOffset,
	}
}

// Validate checks that timeouts are positive and delays are not negative
func (o Options) Validate() error {
	if o.KeyboardTimeout <= 0 {
		return fmt.Errorf("keyboard timeout must be positive, got %s", o.KeyboardTimeout)
	}
	if o.ModeTimeout <= 0 {
		return fmt.Errorf("mode timeout must be positive, got %s", o.ModeTimeout)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", o.PollInterval)
	}
	if o.PostSettle < 0 || o.DragSettle < 0 || o.LongPress < 0 {
		return fmt.Errorf("settle and long press durations must not be negative")
	}
	if o.BottomRowOffset <= 0 || o.TopRowOffset <= 0 {
		return fmt.Errorf("popup row offsets must be positive")
	}
	return nil
}

// Controller moves the keyboard between modes with mode key gestures and
// confirms each move through the Detector. It drives one device from one
// caller; concurrent calls on the same device are not supported.
type Controller struct {
	detector *Detector
	device   DeviceInfo
	gestures GestureChannel
	diag     Diagnostics
	opts     Options
}

// NewController creates a controller. diag may be nil.
func NewController(detector *Detector, device DeviceInfo, gestures GestureChannel, diag Diagnostics, opts Options) (*Controller, error) {
	if detector == nil || device == nil || gestures == nil {
		return nil, fmt.Errorf("detector, device and gesture channel are required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyboard options: %w", err)
	}
	if diag == nil {
		diag = noDiagnostics{}
	}
	return &Controller{
		detector: detector,
		device:   device,
		gestures: gestures,
		diag:     diag,
		opts:     opts,
	}, nil
}

// EnsureDocked leaves the keyboard docked
func (c *Controller) EnsureDocked(ctx context.Context) error {
	return c.Ensure(ctx, ModeDocked)
}

// EnsureUndocked leaves the keyboard floating and unsplit
func (c *Controller) EnsureUndocked(ctx context.Context) error {
	return c.Ensure(ctx, ModeUndocked)
}

// EnsureSplit leaves the keyboard split
func (c *Controller) EnsureSplit(ctx context.Context) error {
	return c.Ensure(ctx, ModeSplit)
}

// Ensure waits for a keyboard and moves it into target. Phone-like devices
// succeed as soon as a keyboard is visible. A single gesture sequence is
// attempted; if target is not confirmed within the mode timeout a
// *TransitionTimeoutError is returned.
func (c *Controller) Ensure(ctx context.Context, target Mode) error {
	if !target.Valid() {
		return fmt.Errorf("invalid target keyboard mode: %s", target)
	}

	oplog := logger.With("op", uuid.NewString()[:8], "target", target)

	if err := c.WaitForKeyboard(ctx); err != nil {
		return err
	}

	phone, err := c.device.IsPhoneLike(ctx)
	if err != nil {
		return fmt.Errorf("failed to read device class: %w", err)
	}
	if phone {
		oplog.Debug("Phone-like device, keyboard has no modes")
		return nil
	}

	current, err := c.detector.CurrentMode(ctx, false)
	if err != nil {
		return err
	}
	if current == target {
		oplog.Debug("Keyboard already in target mode")
		return nil
	}

	unsupported, err := c.device.ModeChangeUnsupported(ctx)
	if err != nil {
		return fmt.Errorf("failed to read platform capabilities: %w", err)
	}
	if unsupported {
		return &KeyboardModeError{Current: current, Target: target}
	}

	steps, err := Transition(current, target)
	if err != nil {
		return err
	}

	oplog.Info("Changing keyboard mode", "from", current, "steps", len(steps))
	for _, step := range steps {
		if err := c.runStep(ctx, oplog, step); err != nil {
			return err
		}
	}

	if err := c.waitForMode(ctx, target); err != nil {
		return err
	}
	oplog.Info("Keyboard mode confirmed", "mode", target)
	return nil
}

func (c *Controller) runStep(ctx context.Context, oplog *log.Logger, step Step) error {
	oplog.Debug("Running transition step", "step", step)
	switch step {
	case StepDragToTopRow:
		return c.dragToRow(ctx, RowTop)
	case StepDragToBottomRow:
		return c.dragToRow(ctx, RowBottom)
	case StepWaitForDocked:
		return c.waitForMode(ctx, ModeDocked)
	default:
		return fmt.Errorf("unknown transition step: %s", step)
	}
}

// WaitForKeyboard blocks until any keyboard is visible
func (c *Controller) WaitForKeyboard(ctx context.Context) error {
	err := wait.Until(ctx, c.detector.IsVisible, wait.Options{
		TimeoutMessage: "keyboard did not appear",
		Timeout:        c.opts.KeyboardTimeout,
		Interval:       c.opts.PollInterval,
		PostSettle:     c.opts.PostSettle,
	})
	if err != nil {
		return fmt.Errorf("waiting for keyboard: %w", err)
	}
	return nil
}

// waitForMode polls until the detector reports target. On timeout the last
// observed mode and the orientation are attached to the error.
func (c *Controller) waitForMode(ctx context.Context, target Mode) error {
	observed := ModeUnknown
	probe := func(ctx context.Context) (bool, error) {
		mode, err := c.detector.CurrentMode(ctx, false)
		if err != nil {
			return false, err
		}
		observed = mode
		return mode == target, nil
	}

	err := wait.Until(ctx, probe, wait.Options{
		TimeoutMessage: fmt.Sprintf("keyboard did not become %s", target),
		Timeout:        c.opts.ModeTimeout,
		Interval:       c.opts.PollInterval,
		PostSettle:     c.opts.PostSettle,
	})
	if err == nil {
		return nil
	}

	var timeoutErr *wait.TimeoutError
	if !errors.As(err, &timeoutErr) {
		return err
	}

	orientation, oErr := c.device.Orientation(ctx)
	if oErr != nil {
		logger.Warn("Failed to read orientation for diagnostics", "error", oErr)
	}
	path, shotErr := c.diag.CaptureScreenshot(ctx, fmt.Sprintf("expected %s keyboard", target))
	if shotErr != nil {
		logger.Warn("Failed to capture screenshot", "error", shotErr)
	}

	return &TransitionTimeoutError{
		Target:      target,
		Observed:    observed,
		Orientation: orientation,
		Screenshot:  path,
		Err:         timeoutErr,
	}
}

// ModeKeyActivationPoint returns where a drag for the given popup row starts
// and ends. Both points are fixed offsets from the mode key's origin.
func (c *Controller) ModeKeyActivationPoint(ctx context.Context, row Row) (from, to Point, err error) {
	rect, err := c.gestures.ModeKeyRect(ctx)
	if err != nil {
		return Point{}, Point{}, fmt.Errorf("failed to locate mode key: %w", err)
	}

	var offset float64
	switch row {
	case RowBottom:
		offset = c.opts.BottomRowOffset
	case RowTop:
		offset = c.opts.TopRowOffset
	default:
		return Point{}, Point{}, fmt.Errorf("unknown popup row: %s", row)
	}

	from = rect.Origin()
	to = Point{X: from.X - offset, Y: from.Y + offset}
	return from, to, nil
}

// PressModeKeyDragToBottomRow long-presses the mode key and releases on the
// bottom popup option (split from docked or undocked, dock and merge from split).
func (c *Controller) PressModeKeyDragToBottomRow(ctx context.Context) error {
	if err := c.detector.RequireModes(ctx, "press mode key"); err != nil {
		return err
	}
	return c.dragToRow(ctx, RowBottom)
}

// PressModeKeyDragToTopRow long-presses the mode key and releases on the top
// popup option (undock from docked, dock from undocked).
func (c *Controller) PressModeKeyDragToTopRow(ctx context.Context) error {
	if err := c.detector.RequireModes(ctx, "press mode key"); err != nil {
		return err
	}
	return c.dragToRow(ctx, RowTop)
}

func (c *Controller) dragToRow(ctx context.Context, row Row) error {
	from, to, err := c.ModeKeyActivationPoint(ctx, row)
	if err != nil {
		return err
	}

	logger.Debug("Dragging mode key", "row", row, "from", from, "to", to)
	if err := c.gestures.Drag(ctx, Drag{From: from, To: to, Hold: c.opts.LongPress}); err != nil {
		return fmt.Errorf("failed to drag mode key to %s row: %w", row, err)
	}
	return wait.Sleep(ctx, c.opts.DragSettle)
}
