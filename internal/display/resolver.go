package display

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Output describes one connected display as reported by the display server.
type Output struct {
	Name    string
	Primary bool
	Rect    Rect
}

// Resolver turns a capture Target into a concrete screen rectangle by
// querying the X display server.
type Resolver struct {
	// run executes a query tool and returns its stdout. Overridable in tests.
	run func(name string, args ...string) ([]byte, error)
}

// NewResolver creates a Resolver backed by the real xrandr/xwininfo tools.
func NewResolver() *Resolver {
	return &Resolver{
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// Resolve maps a Target to its capture rectangle. The result is always fully
// populated or an error; never a partial rectangle.
func (r *Resolver) Resolve(target Target) (Rect, error) {
	switch target.Kind {
	case FullDesktop:
		return r.primaryRect()
	case Monitor:
		outputs, err := r.Outputs()
		if err != nil {
			return Rect{}, err
		}
		for _, out := range outputs {
			if strings.Contains(strings.ToLower(out.Name), strings.ToLower(target.MonitorName)) {
				return out.Rect, nil
			}
		}
		return Rect{}, fmt.Errorf("%w: %q", ErrGeometryNotFound, target.MonitorName)
	case Window:
		if target.WindowRect == nil {
			return Rect{}, ErrNoWindowSelected
		}
		if target.WindowRect.W <= 0 || target.WindowRect.H <= 0 ||
			target.WindowRect.X < 0 || target.WindowRect.Y < 0 {
			return Rect{}, ErrInvalidGeometry
		}
		return *target.WindowRect, nil
	default:
		return Rect{}, fmt.Errorf("unknown capture target kind %d", target.Kind)
	}
}

// Outputs lists all connected outputs reported by xrandr.
func (r *Resolver) Outputs() ([]Output, error) {
	raw, err := r.run("xrandr", "--query")
	if err != nil {
		return nil, fmt.Errorf("failed to query xrandr: %w", err)
	}
	return parseOutputs(string(raw)), nil
}

// primaryRect returns the full rectangle of the primary output, falling back
// to the whole virtual screen when xrandr marks no output as primary.
func (r *Resolver) primaryRect() (Rect, error) {
	raw, err := r.run("xrandr", "--query")
	if err != nil {
		return Rect{}, fmt.Errorf("failed to query xrandr: %w", err)
	}
	out := string(raw)

	for _, o := range parseOutputs(out) {
		if o.Primary {
			return Rect{W: o.Rect.W, H: o.Rect.H}, nil
		}
	}

	if rect, ok := parseScreenSize(out); ok {
		return rect, nil
	}
	return Rect{}, fmt.Errorf("%w: no primary output and no screen dimensions", ErrGeometryNotFound)
}

// geomRe matches xrandr mode geometry, e.g. "1920x1080+0+0".
var geomRe = regexp.MustCompile(`(\d+)x(\d+)\+(\d+)\+(\d+)`)

// screenRe matches the xrandr header, e.g. "current 3840 x 1080".
var screenRe = regexp.MustCompile(`current (\d+) x (\d+)`)

func parseOutputs(xrandrOut string) []Output {
	var outputs []Output
	for _, line := range strings.Split(xrandrOut, "\n") {
		// "eDP-1 connected primary 1920x1080+0+0 ..." - skip "disconnected"
		// lines, which also contain the substring "connected".
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "connected" {
			continue
		}
		m := geomRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		x, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[4])
		outputs = append(outputs, Output{
			Name:    fields[0],
			Primary: strings.Contains(line, " primary "),
			Rect:    Rect{X: x, Y: y, W: w, H: h},
		})
	}
	return outputs
}

func parseScreenSize(xrandrOut string) (Rect, bool) {
	m := screenRe.FindStringSubmatch(xrandrOut)
	if m == nil {
		return Rect{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return Rect{W: w, H: h}, true
}
