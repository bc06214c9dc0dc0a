package keyboard

import (
	"context"
	"fmt"

	"github.com/ferasOS/calabash-ios/internal/logger"
)

// Snapshot is everything the keyboard classification needs from one look at
// the device. Fields that cannot affect the result are left zero: metrics and
// orientation are only read when a key-plane is present, key views only when
// it is absent.
type Snapshot struct {
	PhoneLike   bool
	KeyPlane    *Rect
	KeyViews    int
	Metrics     ScreenMetrics
	Orientation Orientation
}

// Docked reports whether the key-plane is pinned to the bottom screen edge.
// The comparison is exact: a docked key-plane's frame is aligned to whole
// points by the layout engine.
func (s Snapshot) Docked() bool {
	if s.KeyPlane == nil {
		return false
	}
	if s.PhoneLike {
		return true
	}
	return s.Metrics.EffectiveHeight(s.Orientation)-s.KeyPlane.Height == s.KeyPlane.Y
}

// Undocked reports a floating, unsplit keyboard
func (s Snapshot) Undocked() bool {
	if s.PhoneLike {
		return false
	}
	return s.KeyPlane != nil && !s.Docked()
}

// Split reports a keyboard divided in two halves, which has key views but no key-plane
func (s Snapshot) Split() bool {
	if s.PhoneLike {
		return false
	}
	return s.KeyViews > 0 && s.KeyPlane == nil
}

// Visible reports whether any keyboard layout is on screen
func (s Snapshot) Visible() bool {
	return s.Docked() || s.Undocked() || s.Split()
}

// Mode classifies the snapshot, preferring docked, then undocked, then split
func (s Snapshot) Mode() Mode {
	switch {
	case s.Docked():
		return ModeDocked
	case s.Undocked():
		return ModeUndocked
	case s.Split():
		return ModeSplit
	default:
		return ModeUnknown
	}
}

// Detector answers whether a keyboard is visible and in which mode. Every
// call re-queries the device; nothing is cached between calls.
type Detector struct {
	querier Querier
	device  DeviceInfo
	diag    Diagnostics
}

// NewDetector creates a detector. diag may be nil.
func NewDetector(querier Querier, device DeviceInfo, diag Diagnostics) *Detector {
	if diag == nil {
		diag = noDiagnostics{}
	}
	return &Detector{
		querier: querier,
		device:  device,
		diag:    diag,
	}
}

// Snapshot reads the current keyboard state from the device
func (d *Detector) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	phone, err := d.device.IsPhoneLike(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read device class: %w", err)
	}
	snap.PhoneLike = phone

	planes, err := d.querier.Query(ctx, KeyPlaneSelector)
	if err != nil {
		return snap, fmt.Errorf("failed to query key-plane: %w", err)
	}
	if len(planes) > 1 {
		return snap, &AmbiguousStateError{Selector: KeyPlaneSelector, Count: len(planes)}
	}
	if len(planes) == 1 {
		rect := planes[0].Rect
		snap.KeyPlane = &rect
	}

	if phone {
		return snap, nil
	}

	if snap.KeyPlane != nil {
		metrics, err := d.device.ScreenMetrics(ctx)
		if err != nil {
			return snap, fmt.Errorf("failed to read screen metrics: %w", err)
		}
		orientation, err := d.device.Orientation(ctx)
		if err != nil {
			return snap, fmt.Errorf("failed to read orientation: %w", err)
		}
		snap.Metrics = metrics
		snap.Orientation = orientation
		return snap, nil
	}

	keys, err := d.querier.Query(ctx, KeyViewSelector)
	if err != nil {
		return snap, fmt.Errorf("failed to query key views: %w", err)
	}
	snap.KeyViews = len(keys)
	return snap, nil
}

// IsDocked reports whether a keyboard is pinned to the bottom of the screen
func (d *Detector) IsDocked(ctx context.Context) (bool, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Docked(), nil
}

// IsUndocked reports whether a floating, unsplit keyboard is shown
func (d *Detector) IsUndocked(ctx context.Context) (bool, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Undocked(), nil
}

// IsSplit reports whether a split keyboard is shown
func (d *Detector) IsSplit(ctx context.Context) (bool, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Split(), nil
}

// IsVisible reports whether any keyboard is shown
func (d *Detector) IsVisible(ctx context.Context) (bool, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Visible(), nil
}

// CurrentMode classifies the keyboard on screen. With strict set, a missing
// keyboard is an error and a screenshot is captured; otherwise ModeUnknown is
// returned.
func (d *Detector) CurrentMode(ctx context.Context, strict bool) (Mode, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return ModeUnknown, err
	}

	mode := snap.Mode()
	logger.Debug("Classified keyboard", "mode", mode, "phone", snap.PhoneLike, "key_views", snap.KeyViews)

	if mode == ModeUnknown && strict {
		path, shotErr := d.diag.CaptureScreenshot(ctx, "no visible keyboard")
		if shotErr != nil {
			logger.Warn("Failed to capture screenshot", "error", shotErr)
		}
		if path != "" {
			return ModeUnknown, fmt.Errorf("%w [screenshot: %s]", ErrNoVisibleKeyboard, path)
		}
		return ModeUnknown, ErrNoVisibleKeyboard
	}
	return mode, nil
}

// RequireModes returns a NotApplicableError on devices without undocked and
// split keyboards.
func (d *Detector) RequireModes(ctx context.Context, operation string) error {
	phone, err := d.device.IsPhoneLike(ctx)
	if err != nil {
		return fmt.Errorf("failed to read device class: %w", err)
	}
	if phone {
		return &NotApplicableError{Operation: operation}
	}
	return nil
}
