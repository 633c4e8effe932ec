package probe

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ffprobeSample = `{
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "h264",
      "width": 1920,
      "height": 1080
    },
    {
      "codec_type": "audio",
      "codec_name": "aac"
    }
  ],
  "format": {
    "duration": "93.417000"
  }
}`

func TestParseProbeOutput(t *testing.T) {
	meta, err := parseProbeOutput([]byte(ffprobeSample))
	require.NoError(t, err)

	assert.InDelta(t, 93.417, meta.Duration, 0.001)
	assert.Equal(t, "93.42 sec", meta.DurationText())
	assert.Equal(t, "1920x1080", meta.ResolutionText())
	assert.Equal(t, "h264", meta.VideoCodecText())
	assert.Equal(t, "aac", meta.AudioCodecText())
}

func TestParseProbeOutputVideoOnly(t *testing.T) {
	sample := `{"streams":[{"codec_type":"video","codec_name":"h264","width":1280,"height":720}],"format":{"duration":"5.0"}}`
	meta, err := parseProbeOutput([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "1280x720", meta.ResolutionText())
	assert.Equal(t, "N/A", meta.AudioCodecText())
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"))
	require.ErrorIs(t, err, ErrProbeFailed)
}

func TestProbeCommandFailure(t *testing.T) {
	p := &Prober{command: func(name string, arg ...string) *exec.Cmd {
		return exec.Command("sh", "-c", "exit 1")
	}}

	_, err := p.Probe("/tmp/missing.mp4")
	require.ErrorIs(t, err, ErrProbeFailed)
}

func TestProbeParsesCommandOutput(t *testing.T) {
	p := &Prober{command: func(name string, arg ...string) *exec.Cmd {
		return exec.Command("sh", "-c", "cat <<'EOF'\n"+ffprobeSample+"\nEOF")
	}}

	meta, err := p.Probe("/tmp/recording.mp4")
	require.NoError(t, err)
	assert.Equal(t, "h264", meta.VideoCodec)
}

func TestMetadataZeroValues(t *testing.T) {
	var meta Metadata
	assert.Equal(t, "N/A", meta.DurationText())
	assert.Equal(t, "N/A", meta.ResolutionText())
	assert.Equal(t, "N/A", meta.VideoCodecText())
	assert.Equal(t, "N/A", meta.AudioCodecText())
}
