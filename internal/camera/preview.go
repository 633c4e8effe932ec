// Package camera provides a live preview feed from a local camera device.
// Frames are decoded by an ffmpeg pipe and delivered to a handler on a fixed
// interval; nothing is ever persisted. The preview is fully independent of
// the recording pipeline.
package camera

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// ErrCameraUnavailable is returned when the camera device cannot be opened.
var ErrCameraUnavailable = errors.New("unable to access the camera")

// Frame is one decoded RGB24 frame.
type Frame struct {
	Width  int
	Height int
	Pix    []byte // packed RGB, len = Width*Height*3
}

// FrameHandler receives preview frames. Called from the preview goroutine.
type FrameHandler func(Frame)

// Options configure a Preview.
type Options struct {
	Device   string // e.g. /dev/video0
	Width    int
	Height   int
	Interval time.Duration // frame delivery interval
}

// Preview owns one camera capture process and pushes the most recent frame to
// its handler at a fixed interval.
type Preview struct {
	opts    Options
	handler FrameHandler

	// command constructs the capture process. Overridable in tests.
	command func(name string, arg ...string) *exec.Cmd

	mu      sync.Mutex
	frame   []byte
	hasNew  bool
	cmd     *exec.Cmd
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewPreview creates a camera preview delivering frames to handler.
func NewPreview(opts Options, handler FrameHandler) *Preview {
	if opts.Device == "" {
		opts.Device = "/dev/video0"
	}
	if opts.Width <= 0 {
		opts.Width = 320
	}
	if opts.Height <= 0 {
		opts.Height = 240
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	return &Preview{
		opts:    opts,
		handler: handler,
		command: exec.Command,
	}
}

// Start opens the camera device and begins frame delivery.
func (p *Preview) Start() error {
	if p.started {
		return errors.New("preview already started")
	}

	cmd := p.command("ffmpeg",
		"-nostdin",
		"-loglevel", "error",
		"-f", "v4l2",
		"-i", p.opts.Device,
		"-vf", fmt.Sprintf("scale=%d:%d", p.opts.Width, p.opts.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	p.cmd = cmd
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.started = true

	go p.readFrames(stdout)
	go p.deliverFrames()
	return nil
}

// Stop releases the camera device and ends frame delivery.
func (p *Preview) Stop() error {
	if !p.started {
		return nil
	}
	p.started = false
	close(p.stop)
	_ = p.cmd.Process.Kill()
	<-p.done
	_ = p.cmd.Wait()
	return nil
}

// readFrames pulls raw frames off the capture pipe, always keeping only the
// most recent one.
func (p *Preview) readFrames(r io.Reader) {
	defer close(p.done)
	size := p.frameSize()
	buf := make([]byte, size)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}
		p.mu.Lock()
		if p.frame == nil {
			p.frame = make([]byte, size)
		}
		copy(p.frame, buf)
		p.hasNew = true
		p.mu.Unlock()
	}
}

// deliverFrames pushes the latest frame to the handler on the configured
// interval, skipping ticks where no new frame arrived.
func (p *Preview) deliverFrames() {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			frame, ok := p.latestFrame()
			if ok && p.handler != nil {
				p.handler(frame)
			}
		}
	}
}

func (p *Preview) latestFrame() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasNew {
		return Frame{}, false
	}
	p.hasNew = false
	pix := make([]byte, len(p.frame))
	copy(pix, p.frame)
	return Frame{Width: p.opts.Width, Height: p.opts.Height, Pix: pix}, true
}

func (p *Preview) frameSize() int {
	return p.opts.Width * p.opts.Height * 3
}
