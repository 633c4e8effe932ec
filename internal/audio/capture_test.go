package audio

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProber returns a Prober whose capture process runs a different
// shell script per device, keyed by the -D argument.
func scriptedProber(devices []string, scripts map[string]string) *Prober {
	p := NewProber(devices)
	p.Grace = 150 * time.Millisecond
	p.StopTimeout = time.Second
	p.command = func(name string, arg ...string) *exec.Cmd {
		device := arg[1] // arecord -D <device> ...
		return exec.Command("sh", "-c", scripts[device])
	}
	return p
}

func TestStartFirstDeviceWorks(t *testing.T) {
	p := scriptedProber([]string{"hw:0,7", "hw:0,6"}, map[string]string{
		"hw:0,7": "sleep 60",
		"hw:0,6": "exit 1",
	})

	cap, err := p.Start(t.TempDir() + "/audio.wav")
	require.NoError(t, err)
	assert.Equal(t, "hw:0,7", cap.Device)
	require.NoError(t, cap.Stop())
}

func TestStartFallsBackAcrossDevices(t *testing.T) {
	p := scriptedProber([]string{"hw:0,7", "hw:0,6"}, map[string]string{
		"hw:0,7": "exit 1", // dies within the grace period
		"hw:0,6": "sleep 60",
	})

	cap, err := p.Start(t.TempDir() + "/audio.wav")
	require.NoError(t, err)
	assert.Equal(t, "hw:0,6", cap.Device, "probing falls back to the next device")
	require.NoError(t, cap.Stop())
}

func TestStartAllDevicesExhausted(t *testing.T) {
	p := scriptedProber([]string{"hw:0,7", "hw:0,6"}, map[string]string{
		"hw:0,7": "exit 1",
		"hw:0,6": "exit 2",
	})

	_, err := p.Start(t.TempDir() + "/audio.wav")
	require.ErrorIs(t, err, ErrAudioDeviceUnavailable)
}

func TestStartNoDevicesConfigured(t *testing.T) {
	p := NewProber(nil)
	_, err := p.Start(t.TempDir() + "/audio.wav")
	require.ErrorIs(t, err, ErrAudioDeviceUnavailable)
}

func TestStopTerminatesGracefully(t *testing.T) {
	// The stand-in exits cleanly on SIGTERM like arecord does.
	p := scriptedProber([]string{"hw:0,7"}, map[string]string{
		"hw:0,7": "trap 'exit 0' TERM; while :; do sleep 0.1; done",
	})

	cap, err := p.Start(t.TempDir() + "/audio.wav")
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, cap.Stop())
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, cap.Stop(), "stopping twice is a no-op")
}

func TestStopForcedKill(t *testing.T) {
	p := scriptedProber([]string{"hw:0,7"}, map[string]string{
		"hw:0,7": "trap '' TERM; while :; do sleep 0.1; done",
	})
	p.StopTimeout = 200 * time.Millisecond

	cap, err := p.Start(t.TempDir() + "/audio.wav")
	require.NoError(t, err)

	err = cap.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "killed")
}
