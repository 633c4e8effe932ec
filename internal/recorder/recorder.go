package recorder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/screenrec/screenrec/internal/display"
)

// ErrSegmentStartFailed is returned when the capture process could not be
// launched for a new segment.
var ErrSegmentStartFailed = errors.New("failed to start capture process")

// DefaultStopTimeout bounds the graceful shutdown of a capture process before
// it is force-killed.
const DefaultStopTimeout = 5 * time.Second

// Segment is one contiguous capture interval. It becomes immutable once its
// process has been stopped.
type Segment struct {
	Index     int
	Path      string
	LogPath   string
	StartedAt time.Time

	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   *os.File
}

// Options configure a segment Recorder for one session.
type Options struct {
	OutputDir   string
	Display     string // X display, e.g. ":0.0"
	Framerate   int
	AudioDevice string // first device of the configured order; combined mode only
	StopTimeout time.Duration
}

// Recorder launches and tears down one capture process per segment. At most
// one segment process is active at a time; the session controller serializes
// all calls.
type Recorder struct {
	opts Options

	resolver geometryResolver

	// command constructs the capture process. Overridable in tests.
	command func(name string, arg ...string) *exec.Cmd
}

type geometryResolver interface {
	Resolve(display.Target) (display.Rect, error)
}

// New creates a Recorder that captures via ffmpeg.
func New(resolver *display.Resolver, opts Options) *Recorder {
	return newRecorder(resolver, opts)
}

func newRecorder(resolver geometryResolver, opts Options) *Recorder {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.Framerate <= 0 {
		opts.Framerate = 30
	}
	return &Recorder{
		opts:     opts,
		resolver: resolver,
		command:  exec.Command,
	}
}

// StartSegment resolves the capture geometry and launches a process recording
// screen and audio into segment_<index>.mp4. Segment indices are assigned by
// the session controller and are gapless within a session.
func (r *Recorder) StartSegment(index int, target display.Target, quality Quality) (*Segment, error) {
	rect, err := r.resolver.Resolve(target)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.opts.OutputDir, fmt.Sprintf("segment_%d.mp4", index))
	cmd := r.command("ffmpeg", r.captureArgs(rect, quality, path, true)...)

	return r.launch(index, path, cmd)
}

// StartVideoSegment launches a video-only capture for the split-stream mode,
// where audio is recorded by a separate process.
func (r *Recorder) StartVideoSegment(index int, target display.Target, quality Quality) (*Segment, error) {
	rect, err := r.resolver.Resolve(target)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.opts.OutputDir, fmt.Sprintf("segment_%d.mp4", index))
	cmd := r.command("ffmpeg", r.captureArgs(rect, quality, path, false)...)

	return r.launch(index, path, cmd)
}

func (r *Recorder) launch(index int, path string, cmd *exec.Cmd) (*Segment, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentStartFailed, err)
	}

	seg := &Segment{
		Index:     index,
		Path:      path,
		LogPath:   path + ".ffmpeg.log",
		StartedAt: time.Now(),
		cmd:       cmd,
		stdin:     stdin,
	}

	// Capture stderr for diagnostics; recording proceeds without it.
	if logFile, err := os.Create(seg.LogPath); err == nil {
		cmd.Stderr = logFile
		seg.log = logFile
	}

	if err := cmd.Start(); err != nil {
		if seg.log != nil {
			seg.log.Close()
		}
		return nil, fmt.Errorf("%w: %v", ErrSegmentStartFailed, err)
	}
	return seg, nil
}

// StopSegment requests a graceful shutdown of the segment's capture process
// and force-kills it after the stop timeout. The segment is finalized on
// every path; a forced kill or abnormal exit is reported but never prevents
// the segment file from entering the session list.
func (r *Recorder) StopSegment(seg *Segment) error {
	if seg.cmd == nil {
		return nil
	}
	defer func() {
		seg.cmd = nil
		if seg.log != nil {
			seg.log.Close()
			seg.log = nil
		}
	}()

	// ffmpeg finalizes the container on "q"; closing stdin afterwards covers
	// processes that exit on EOF instead.
	if seg.stdin != nil {
		_, _ = seg.stdin.Write([]byte("q\n"))
		_ = seg.stdin.Close()
		seg.stdin = nil
	}

	done := make(chan error, 1)
	go func() { done <- seg.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			// Exit code 255 is normal for ffmpeg interrupted via "q".
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && (exitErr.ExitCode() == 255 || exitErr.ExitCode() == 0) {
				return nil
			}
			return fmt.Errorf("capture process exited abnormally: %w", err)
		}
		return nil
	case <-time.After(r.opts.StopTimeout):
		_ = seg.cmd.Process.Kill()
		<-done
		return fmt.Errorf("capture process killed after %s stop timeout", r.opts.StopTimeout)
	}
}

// captureArgs builds the ffmpeg invocation for one segment.
func (r *Recorder) captureArgs(rect display.Rect, quality Quality, path string, withAudio bool) []string {
	fps := strconv.Itoa(r.opts.Framerate)

	args := []string{
		"-f", "x11grab",
		"-video_size", rect.Size(),
		"-i", r.opts.Display + rect.Offset(),
	}
	if withAudio {
		args = append(args,
			"-f", "alsa",
			"-thread_queue_size", "512",
			"-i", r.opts.AudioDevice,
		)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", quality.Preset(),
		"-crf", quality.CRF(),
		"-r", fps,
	)
	if withAudio {
		args = append(args,
			"-c:a", "aac",
			"-ar", "44100",
			"-ac", "2",
		)
	} else {
		args = append(args, "-an")
	}
	return append(args, path)
}
