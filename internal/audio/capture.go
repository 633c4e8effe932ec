// Package audio captures microphone audio through arecord for the
// split-stream recording mode, falling back across an ordered device list.
package audio

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// ErrAudioDeviceUnavailable is returned when every configured capture device
// failed to start. The record command treats it as fatal.
var ErrAudioDeviceUnavailable = errors.New("all audio capture devices failed")

const (
	// DefaultGrace is how long a capture process must stay alive before its
	// device is considered working.
	DefaultGrace = 3 * time.Second

	defaultStopTimeout = 5 * time.Second
)

// Capture is a running audio capture process.
type Capture struct {
	Device string
	Path   string

	cmd         *exec.Cmd
	done        chan error
	stopTimeout time.Duration
}

// Prober starts audio capture on the first working device of a configured
// ordered list. Each device gets one attempt with a bounded startup grace.
type Prober struct {
	Devices     []string
	Grace       time.Duration
	StopTimeout time.Duration

	// command constructs the capture process. Overridable in tests.
	command func(name string, arg ...string) *exec.Cmd
}

// NewProber creates a Prober over the given device order.
func NewProber(devices []string) *Prober {
	return &Prober{
		Devices:     devices,
		Grace:       DefaultGrace,
		StopTimeout: defaultStopTimeout,
		command:     exec.Command,
	}
}

// Start tries each configured device in order and returns a running Capture
// writing WAV data to outputPath. A device whose process exits within the
// grace period is skipped; when all are exhausted ErrAudioDeviceUnavailable
// is returned.
func (p *Prober) Start(outputPath string) (*Capture, error) {
	if len(p.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices configured", ErrAudioDeviceUnavailable)
	}
	grace := p.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	stopTimeout := p.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	command := p.command
	if command == nil {
		command = exec.Command
	}

	var lastErr error
	for _, device := range p.Devices {
		cmd := command("arecord",
			"-D", device,
			"-f", "cd",
			"-t", "wav",
			"-r", "16000",
			outputPath,
		)
		if err := cmd.Start(); err != nil {
			lastErr = fmt.Errorf("device %s: %w", device, err)
			continue
		}

		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()

		select {
		case err := <-done:
			lastErr = fmt.Errorf("device %s exited during startup: %v", device, err)
		case <-time.After(grace):
			return &Capture{
				Device:      device,
				Path:        outputPath,
				cmd:         cmd,
				done:        done,
				stopTimeout: stopTimeout,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrAudioDeviceUnavailable, lastErr)
}

// Stop terminates the capture process, waiting for it to finalize the WAV
// file and force-killing after the stop timeout.
func (c *Capture) Stop() error {
	if c.cmd == nil {
		return nil
	}
	defer func() { c.cmd = nil }()

	_ = c.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case err := <-c.done:
		// arecord exits 1 on SIGTERM after flushing; not a failure.
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("audio capture exited abnormally: %w", err)
		}
		return nil
	case <-time.After(c.stopTimeout):
		_ = c.cmd.Process.Kill()
		<-c.done
		return fmt.Errorf("audio capture killed after %s stop timeout", c.stopTimeout)
	}
}
