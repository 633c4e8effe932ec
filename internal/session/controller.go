package session

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/screenrec/screenrec/internal/display"
	"github.com/screenrec/screenrec/internal/recorder"
)

// State is the recording session state.
type State int

const (
	Idle State = iota
	Recording
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

var (
	// ErrNotIdle is returned when Start is called on an active session.
	ErrNotIdle = errors.New("a recording session is already active")

	// ErrNotRecording is returned when Stop is called with no active session.
	ErrNotRecording = errors.New("no recording session is active")
)

// SegmentRecorder starts and stops one capture process per segment.
type SegmentRecorder interface {
	StartSegment(index int, target display.Target, quality recorder.Quality) (*recorder.Segment, error)
	StopSegment(seg *recorder.Segment) error
}

// Joiner merges ordered segment files into a single output file.
type Joiner interface {
	Join(segmentPaths []string, outputName string) (string, error)
}

// Controller sequences capture segments across pause/resume cycles. All
// transitions are serialized; the zero-value states and counters are reset on
// every Start.
type Controller struct {
	rec    SegmentRecorder
	joiner Joiner

	// Logf receives best-effort diagnostics (forced kills, abnormal exits)
	// that are never surfaced as user-facing errors. Nil disables them.
	Logf func(format string, args ...any)

	mu        sync.Mutex
	state     State
	startedAt time.Time
	target    display.Target
	quality   recorder.Quality
	segments  []*recorder.Segment
	current   *recorder.Segment
}

// Result describes a finished session.
type Result struct {
	OutputPath string
	Segments   []string
	StartedAt  time.Time
	StoppedAt  time.Time
}

// Snapshot is a read-only view of session progress, published for UI polling.
type Snapshot struct {
	State     State
	Elapsed   time.Duration
	Segments  int
	TotalSize int64
}

// NewController creates a session controller.
func NewController(rec SegmentRecorder, joiner Joiner) *Controller {
	return &Controller{rec: rec, joiner: joiner}
}

// Start begins a new session and its first segment. Valid only from Idle.
func (c *Controller) Start(target display.Target, quality recorder.Quality) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return ErrNotIdle
	}

	c.segments = nil
	c.current = nil
	c.target = target
	c.quality = quality
	c.startedAt = time.Now()

	seg, err := c.rec.StartSegment(1, target, quality)
	if err != nil {
		return err
	}
	c.current = seg
	c.state = Recording
	return nil
}

// Pause stops the current segment and keeps the accumulated segment list.
// A no-op unless recording.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Recording {
		return nil
	}
	c.finishCurrent()
	c.state = Paused
	return nil
}

// Resume starts the next segment; numbering continues where it left off.
// A no-op unless paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Paused {
		return nil
	}
	seg, err := c.rec.StartSegment(len(c.segments)+1, c.target, c.quality)
	if err != nil {
		return err
	}
	c.current = seg
	c.state = Recording
	return nil
}

// Stop ends the session, hands the chronological segment list to the Joiner,
// and resets to Idle. The session returns to Idle even when the merge fails;
// the Joiner reports where intact segment files remain.
func (c *Controller) Stop(outputName string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return nil, ErrNotRecording
	}
	c.finishCurrent()
	c.state = Idle

	paths := make([]string, len(c.segments))
	for i, seg := range c.segments {
		paths[i] = seg.Path
	}

	out, err := c.joiner.Join(paths, outputName)
	result := &Result{
		OutputPath: out,
		Segments:   paths,
		StartedAt:  c.startedAt,
		StoppedAt:  time.Now(),
	}
	if err != nil {
		return result, fmt.Errorf("failed to combine segments: %w", err)
	}
	return result, nil
}

// Abort stops the active segment and resets to Idle without combining
// anything. Segment files already on disk are kept for prune.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}
	c.finishCurrent()
	c.segments = nil
	c.state = Idle
}

// Snapshot publishes the current session progress. Sizes are recomputed from
// the filesystem so callers never share mutable recording state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:    c.state,
		Segments: len(c.segments),
	}
	if c.state != Idle {
		snap.Elapsed = time.Since(c.startedAt)
	}
	if c.current != nil {
		snap.Segments++
	}
	for _, seg := range c.segments {
		snap.TotalSize += fileSize(seg.Path)
	}
	if c.current != nil {
		snap.TotalSize += fileSize(c.current.Path)
	}
	return snap
}

// finishCurrent stops the active segment, if any, and appends it to the
// session list. Termination failures are best-effort cleanup and only logged;
// a partial segment file is still handed to the Joiner.
func (c *Controller) finishCurrent() {
	if c.current == nil {
		return
	}
	if err := c.rec.StopSegment(c.current); err != nil && c.Logf != nil {
		c.Logf("segment %d: %v", c.current.Index, err)
	}
	c.segments = append(c.segments, c.current)
	c.current = nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
