// Package probe inspects finished recordings with ffprobe.
package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrProbeFailed is returned when ffprobe could not inspect a file. Callers
// treat it as non-fatal and display "N/A" metadata.
var ErrProbeFailed = errors.New("failed to probe output file")

// Metadata describes a finished recording. Zero values render as "N/A".
type Metadata struct {
	Duration   float64 // seconds
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
}

// DurationText formats the container duration for display.
func (m Metadata) DurationText() string {
	if m.Duration <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f sec", m.Duration)
}

// ResolutionText formats the video stream dimensions for display.
func (m Metadata) ResolutionText() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// VideoCodecText returns the video codec name for display.
func (m Metadata) VideoCodecText() string {
	if m.VideoCodec == "" {
		return "N/A"
	}
	return m.VideoCodec
}

// AudioCodecText returns the audio codec name for display.
func (m Metadata) AudioCodecText() string {
	if m.AudioCodec == "" {
		return "N/A"
	}
	return m.AudioCodec
}

// Prober inspects media files.
type Prober struct {
	// command constructs the probe process. Overridable in tests.
	command func(name string, arg ...string) *exec.Cmd
}

// New creates a Prober backed by ffprobe.
func New() *Prober {
	return &Prober{command: exec.Command}
}

// ffprobe JSON output shapes; only the fields we report.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe inspects path and returns its container and stream metadata.
func (p *Prober) Probe(path string) (Metadata, error) {
	cmd := p.command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (Metadata, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	var meta Metadata
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		meta.Duration = d
	}
	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			if meta.VideoCodec == "" {
				meta.VideoCodec = stream.CodecName
				meta.Width = stream.Width
				meta.Height = stream.Height
			}
		case "audio":
			if meta.AudioCodec == "" {
				meta.AudioCodec = stream.CodecName
			}
		}
	}
	return meta, nil
}
