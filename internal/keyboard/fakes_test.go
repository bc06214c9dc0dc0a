package keyboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeTablet models a device whose keyboard responds to mode key drags the way
// a real tablet does. It implements Querier, GestureChannel, DeviceInfo and
// Diagnostics.
type fakeTablet struct {
	mu sync.Mutex

	phone       bool
	unsupported bool
	stuck       bool
	metrics     ScreenMetrics
	orientation Orientation
	modeKey     Rect

	// mode is what is on screen; ModeUnknown means no keyboard
	mode Mode
	// extraPlanes adds duplicate key-plane matches
	extraPlanes int

	queries     []string
	drags       []Drag
	rows        []Row
	modeAtDrag  []Mode
	events      []string
	metricsRead int
	screenshots []string
}

func newFakeTablet(mode Mode) *fakeTablet {
	return &fakeTablet{
		metrics:     ScreenMetrics{Width: 768, Height: 704, Scale: 1},
		orientation: OrientationUp,
		modeKey:     Rect{X: 700, Y: 650, Width: 60, Height: 50},
		mode:        mode,
	}
}

func (f *fakeTablet) dockedPlane() Rect {
	height := 216.0
	return Rect{X: 0, Y: f.metrics.EffectiveHeight(f.orientation) - height, Width: 768, Height: height}
}

func (f *fakeTablet) Query(_ context.Context, selector string) ([]Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, selector)
	f.events = append(f.events, "query:"+f.mode.String())

	var out []Element
	switch selector {
	case KeyPlaneSelector:
		switch f.mode {
		case ModeDocked:
			out = append(out, Element{Class: "UIKBKeyplaneView", Rect: f.dockedPlane()})
		case ModeUndocked:
			plane := f.dockedPlane()
			plane.Y -= 120
			out = append(out, Element{Class: "UIKBKeyplaneView", Rect: plane})
		case ModeSplit, ModeUnknown:
		}
		for i := 0; i < f.extraPlanes; i++ {
			out = append(out, Element{Class: "UIKBKeyplaneView", Rect: f.dockedPlane()})
		}
	case KeyViewSelector:
		if f.mode != ModeUnknown {
			for i := 0; i < 30; i++ {
				out = append(out, Element{Class: "UIKBKeyView"})
			}
		}
	default:
		return nil, fmt.Errorf("unexpected selector %q", selector)
	}
	return out, nil
}

func (f *fakeTablet) ModeKeyRect(context.Context) (Rect, error) {
	return f.modeKey, nil
}

func (f *fakeTablet) Drag(_ context.Context, drag Drag) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row := RowBottom
	if drag.From.X-drag.To.X == DefaultTopRowOffset {
		row = RowTop
	}
	f.drags = append(f.drags, drag)
	f.rows = append(f.rows, row)
	f.modeAtDrag = append(f.modeAtDrag, f.mode)
	f.events = append(f.events, "drag:"+row.String())

	if f.stuck {
		return nil
	}
	switch f.mode {
	case ModeDocked:
		if row == RowTop {
			f.mode = ModeUndocked
		} else {
			f.mode = ModeSplit
		}
	case ModeUndocked:
		if row == RowTop {
			f.mode = ModeDocked
		} else {
			f.mode = ModeSplit
		}
	case ModeSplit:
		if row == RowTop {
			f.mode = ModeUndocked
		} else {
			f.mode = ModeDocked
		}
	case ModeUnknown:
	}
	return nil
}

func (f *fakeTablet) IsPhoneLike(context.Context) (bool, error) {
	return f.phone, nil
}

func (f *fakeTablet) ScreenMetrics(context.Context) (ScreenMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricsRead++
	return f.metrics, nil
}

func (f *fakeTablet) Orientation(context.Context) (Orientation, error) {
	return f.orientation, nil
}

func (f *fakeTablet) ModeChangeUnsupported(context.Context) (bool, error) {
	return f.unsupported, nil
}

func (f *fakeTablet) CaptureScreenshot(_ context.Context, reason string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshots = append(f.screenshots, reason)
	return fmt.Sprintf("/tmp/shot-%d.png", len(f.screenshots)), nil
}

func (f *fakeTablet) setMode(mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.KeyboardTimeout = 200 * time.Millisecond
	opts.ModeTimeout = 100 * time.Millisecond
	opts.PollInterval = time.Millisecond
	opts.DragSettle = 0
	opts.LongPress = 0
	return opts
}

func newTestController(f *fakeTablet) *Controller {
	detector := NewDetector(f, f, f)
	c, err := NewController(detector, f, f, f, testOptions())
	if err != nil {
		panic(err)
	}
	return c
}
