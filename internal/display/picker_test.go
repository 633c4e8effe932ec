package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xwininfoSample = `
xwininfo: Window id: 0x3a00007 "Terminal"

  Absolute upper-left X:  640
  Absolute upper-left Y:  360
  Relative upper-left X:  0
  Relative upper-left Y:  0
  Width: 1280
  Height: 720
  Depth: 24
  Visual: 0x21
`

func TestPickWindow(t *testing.T) {
	r := fakeResolver(xwininfoSample, nil)
	rect, err := r.PickWindow()
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 640, Y: 360, W: 1280, H: 720}, rect)
}

func TestPickWindowUnparseable(t *testing.T) {
	r := fakeResolver("xwininfo: error: unable to query window\n", nil)
	_, err := r.PickWindow()
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseWindowInfoMissingField(t *testing.T) {
	// Height line missing entirely.
	partial := `
  Absolute upper-left X:  10
  Absolute upper-left Y:  20
  Width: 300
`
	_, err := parseWindowInfo(partial)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}
