package display

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	winXRe = regexp.MustCompile(`Absolute upper-left X:\s+(\d+)`)
	winYRe = regexp.MustCompile(`Absolute upper-left Y:\s+(\d+)`)
	winWRe = regexp.MustCompile(`Width:\s+(\d+)`)
	winHRe = regexp.MustCompile(`Height:\s+(\d+)`)
)

// PickWindow runs xwininfo, which blocks until the user clicks a window, and
// returns the clicked window's geometry.
func (r *Resolver) PickWindow() (Rect, error) {
	raw, err := r.run("xwininfo")
	if err != nil {
		return Rect{}, fmt.Errorf("failed to run xwininfo: %w", err)
	}
	return parseWindowInfo(string(raw))
}

func parseWindowInfo(out string) (Rect, error) {
	x, okX := matchInt(winXRe, out)
	y, okY := matchInt(winYRe, out)
	w, okW := matchInt(winWRe, out)
	h, okH := matchInt(winHRe, out)
	if !okX || !okY || !okW || !okH {
		return Rect{}, fmt.Errorf("%w: could not parse xwininfo output", ErrInvalidGeometry)
	}
	return Rect{X: x, Y: y, W: w, H: h}, nil
}

func matchInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
