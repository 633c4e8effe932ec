package display

import (
	"errors"
	"fmt"
)

// Sentinel errors for capture target resolution. Commands match on these to
// decide whether a recording may start.
var (
	// ErrGeometryNotFound is returned when no connected output matches the
	// requested monitor name.
	ErrGeometryNotFound = errors.New("no connected output matches the requested monitor")

	// ErrNoWindowSelected is returned when a window capture is requested but
	// no window was picked beforehand.
	ErrNoWindowSelected = errors.New("no window selected - run the window picker first")

	// ErrInvalidGeometry is returned when a picked window geometry does not
	// parse as four integers.
	ErrInvalidGeometry = errors.New("invalid window geometry")
)

// TargetKind identifies which region of the screen to capture.
type TargetKind int

const (
	FullDesktop TargetKind = iota
	Monitor
	Window
)

func (k TargetKind) String() string {
	switch k {
	case FullDesktop:
		return "desktop"
	case Monitor:
		return "monitor"
	case Window:
		return "window"
	default:
		return "unknown"
	}
}

// Target is the logical region selected for capture.
type Target struct {
	Kind TargetKind

	// MonitorName is the output name to match when Kind is Monitor.
	// Matching is a case-insensitive substring match.
	MonitorName string

	// WindowRect holds the picked window geometry when Kind is Window.
	// Nil until the picker has run.
	WindowRect *Rect
}

// Rect is a concrete capture rectangle in screen pixels.
type Rect struct {
	X, Y int
	W, H int
}

// Size returns the rectangle dimensions as an ffmpeg video_size argument.
func (r Rect) Size() string {
	return fmt.Sprintf("%dx%d", r.W, r.H)
}

// Offset returns the rectangle origin as an x11grab display offset suffix.
func (r Rect) Offset() string {
	return fmt.Sprintf("+%d+%d", r.X, r.Y)
}
