// Package keyboard detects the on-screen software keyboard layout of a tablet
// under test and drives the mode key popup to move between docked, undocked
// and split layouts.
package keyboard

import (
	"fmt"
	"strings"
)

// Mode is the layout the software keyboard is currently presented in
type Mode int

const (
	ModeUnknown Mode = iota
	ModeDocked
	ModeUndocked
	ModeSplit
)

func (m Mode) String() string {
	switch m {
	case ModeDocked:
		return "docked"
	case ModeUndocked:
		return "undocked"
	case ModeSplit:
		return "split"
	case ModeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a mode the controller can target
func (m Mode) Valid() bool {
	switch m {
	case ModeDocked, ModeUndocked, ModeSplit:
		return true
	case ModeUnknown:
		return false
	default:
		return false
	}
}

// ParseMode parses a mode name as accepted on the command line
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "docked", "dock":
		return ModeDocked, nil
	case "undocked", "undock", "floating":
		return ModeUndocked, nil
	case "split":
		return ModeSplit, nil
	default:
		return ModeUnknown, fmt.Errorf("invalid keyboard mode: %q (must be docked, undocked, or split)", s)
	}
}

// Orientation is the status bar orientation reported by the device
type Orientation int

const (
	OrientationUp Orientation = iota
	OrientationDown
	OrientationLeft
	OrientationRight
)

func (o Orientation) String() string {
	switch o {
	case OrientationUp:
		return "up"
	case OrientationDown:
		return "down"
	case OrientationLeft:
		return "left"
	case OrientationRight:
		return "right"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Rotated reports whether the device is held in landscape, where the
// reported screen width is the visible height.
func (o Orientation) Rotated() bool {
	return o == OrientationLeft || o == OrientationRight
}

// ParseOrientation parses the status bar orientation strings used by device agents
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "portrait":
		return OrientationUp, nil
	case "down", "portrait_upside_down", "upside_down":
		return OrientationDown, nil
	case "left", "landscape_left":
		return OrientationLeft, nil
	case "right", "landscape_right":
		return OrientationRight, nil
	default:
		return OrientationUp, fmt.Errorf("invalid orientation: %q", s)
	}
}

// Rect is an element frame in device points
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Point is a screen coordinate in device points
type Point struct {
	X float64
	Y float64
}

// Origin returns the top-left corner of the rect
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// ScreenMetrics are the raw screen dimensions, independent of rotation
type ScreenMetrics struct {
	Width  float64
	Height float64
	Scale  float64
}

// EffectiveHeight returns the visible screen height in points for the given
// orientation. Devices report width and height for the unrotated screen, so
// landscape orientations use the width.
func (s ScreenMetrics) EffectiveHeight(o Orientation) float64 {
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}
	if o.Rotated() {
		return s.Width / scale
	}
	return s.Height / scale
}

// Element is a single match returned by a UI query
type Element struct {
	Class string
	Label string
	Rect  Rect
}
