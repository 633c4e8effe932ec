package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/screenrec/screenrec/internal/audio"
	"github.com/screenrec/screenrec/internal/concat"
	"github.com/screenrec/screenrec/internal/config"
	"github.com/screenrec/screenrec/internal/display"
	"github.com/screenrec/screenrec/internal/probe"
	"github.com/screenrec/screenrec/internal/recorder"
	"github.com/screenrec/screenrec/internal/session"
)

var (
	recordMonitor    string
	recordWindow     bool
	recordQuality    string
	recordName       string
	recordSplitAudio bool
	recordOutputDir  string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start an interactive recording session",
	Long: `Start an interactive screen recording session.

While recording:
  p - pause
  r - resume
  q - stop and save

The default source is the full primary desktop. Use --monitor to capture one
output, or --window to click-select a window before recording starts.

Examples:
  screenrec record
  screenrec record --monitor HDMI-1 --quality high
  screenrec record --window --name demo
  screenrec record --split-audio`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordMonitor, "monitor", "m", "", "capture the output matching this name")
	recordCmd.Flags().BoolVarP(&recordWindow, "window", "w", false, "interactively pick a window to capture")
	recordCmd.Flags().StringVarP(&recordQuality, "quality", "q", "", "encoding quality: low, medium, high (default from config)")
	recordCmd.Flags().StringVarP(&recordName, "name", "n", "", "output file name (default: screenrecording<N>.mp4)")
	recordCmd.Flags().BoolVar(&recordSplitAudio, "split-audio", false, "record audio with a separate process and mux on stop")
	recordCmd.Flags().StringVarP(&recordOutputDir, "output-dir", "o", "", "output directory (default from config)")

	rootCmd.AddCommand(recordCmd)
}

// videoOnlyRecorder adapts the Recorder to the split-stream mode, where the
// capture process records no audio.
type videoOnlyRecorder struct {
	*recorder.Recorder
}

func (v videoOnlyRecorder) StartSegment(index int, target display.Target, quality recorder.Quality) (*recorder.Segment, error) {
	return v.StartVideoSegment(index, target, quality)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if recordOutputDir != "" {
		cfg.OutputDir = recordOutputDir
	}
	if recordQuality == "" {
		recordQuality = cfg.Quality
	}
	quality, err := recorder.ParseQuality(recordQuality)
	if err != nil {
		return err
	}

	if err := config.EnsureOutputDir(cfg); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resolver := display.NewResolver()
	target, sourceLabel, err := resolveTarget(resolver)
	if err != nil {
		return err
	}
	Debug("Capture target: %s", sourceLabel)

	xDisplay := os.Getenv("DISPLAY")
	if xDisplay == "" {
		xDisplay = ":0.0"
	}

	audioDevice := ""
	if len(cfg.Audio.Devices) > 0 {
		audioDevice = cfg.Audio.Devices[0]
	}
	rec := recorder.New(resolver, recorder.Options{
		OutputDir:   cfg.OutputDir,
		Display:     xDisplay,
		Framerate:   cfg.Framerate,
		AudioDevice: audioDevice,
		StopTimeout: cfg.StopTimeout,
	})
	joiner := concat.New(cfg.OutputDir)

	var segRec session.SegmentRecorder = rec
	if recordSplitAudio {
		segRec = videoOnlyRecorder{rec}
	}

	ctrl := session.NewController(segRec, joiner)
	ctrl.Logf = Debug

	startedAt := time.Now()
	if err := ctrl.Start(target, quality); err != nil {
		return describeStartError(err)
	}

	// In split mode a separate audio process runs for the whole session,
	// probing the configured device order with a bounded startup grace.
	var audioCapture *audio.Capture
	if recordSplitAudio {
		prober := audio.NewProber(cfg.Audio.Devices)
		prober.Grace = cfg.Audio.Grace
		prober.StopTimeout = cfg.StopTimeout
		fmt.Println("Probing audio devices...")
		audioCapture, err = prober.Start(filepath.Join(cfg.OutputDir, "audio.wav"))
		if err != nil {
			ctrl.Abort()
			return err
		}
		fmt.Printf("Audio device: %s\n", audioCapture.Device)
	}

	fmt.Printf("Recording %s at %s quality. Keys: p=pause, r=resume, q=stop\n", sourceLabel, quality)
	if err := interactLoop(ctrl, recordSplitAudio); err != nil {
		return err
	}

	result, stopErr := ctrl.Stop(outputNameForSplit(recordName, recordSplitAudio))
	stoppedAt := time.Now()

	if recordSplitAudio && audioCapture != nil {
		if err := audioCapture.Stop(); err != nil {
			Debug("audio capture: %v", err)
		}
	}

	rc := &session.Record{
		ID:        uuid.New().String(),
		Source:    sourceLabel,
		Quality:   string(quality),
		StartedAt: startedAt,
		StoppedAt: &stoppedAt,
		Status:    "failed",
	}
	if result != nil {
		rc.Segments = len(result.Segments)
	}

	outputPath := ""
	if stopErr == nil {
		outputPath = result.OutputPath
		if recordSplitAudio {
			outputPath, stopErr = joiner.MuxAudio(result.OutputPath,
				filepath.Join(cfg.OutputDir, "audio.wav"), recordName)
		}
	}

	if stopErr != nil {
		saveRecord(rc)
		if errors.Is(stopErr, concat.ErrEmptySegmentList) {
			fmt.Println("No recording segments were recorded; nothing to save.")
			return nil
		}
		return stopErr
	}

	rc.Status = "completed"
	rc.OutputFile = outputPath
	saveRecord(rc)

	fmt.Printf("\nSaved as %s\n", outputPath)
	printMetadata(outputPath)
	return nil
}

// resolveTarget maps the record flags to a capture target, running the
// interactive window picker when requested.
func resolveTarget(resolver *display.Resolver) (display.Target, string, error) {
	switch {
	case recordWindow:
		fmt.Println("Click the window to record...")
		rect, err := resolver.PickWindow()
		if err != nil {
			return display.Target{}, "", err
		}
		fmt.Printf("Selected window geometry: %d,%d,%d,%d\n", rect.X, rect.Y, rect.W, rect.H)
		return display.Target{Kind: display.Window, WindowRect: &rect}, "window", nil
	case recordMonitor != "":
		return display.Target{Kind: display.Monitor, MonitorName: recordMonitor}, "monitor:" + recordMonitor, nil
	default:
		return display.Target{Kind: display.FullDesktop}, "desktop", nil
	}
}

// interactLoop drives pause/resume/stop from single keypresses until the user
// stops the session or a signal arrives. All state transitions stay on this
// goroutine; the ticker only reads published snapshots.
func interactLoop(ctrl *session.Controller, splitAudio bool) error {
	fd := int(os.Stdin.Fd())
	rawState, rawErr := term.MakeRaw(fd)
	if rawErr == nil {
		defer term.Restore(fd, rawState)
	} else {
		Debug("raw terminal unavailable: %v", rawErr)
	}

	keys := make(chan byte, 8)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				keys <- buf[0]
			}
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			printStatus(ctrl.Snapshot())
		case sig := <-sigs:
			fmt.Printf("\r\nReceived %v, stopping...\r\n", sig)
			return nil
		case key := <-keys:
			switch key {
			case 'p':
				if splitAudio {
					fmt.Print("\r\nPause is not available with --split-audio\r\n")
					continue
				}
				if err := ctrl.Pause(); err != nil {
					return err
				}
				printStatus(ctrl.Snapshot())
			case 'r':
				if err := ctrl.Resume(); err != nil {
					return err
				}
				printStatus(ctrl.Snapshot())
			case 'q', 's', 3: // 3 = Ctrl-C in raw mode
				fmt.Print("\r\nStopping...\r\n")
				return nil
			}
		}
	}
}

func printStatus(snap session.Snapshot) {
	fmt.Printf("\r\033[K[%s] %s | %s | %d segment(s)",
		snap.State,
		snap.Elapsed.Truncate(time.Second),
		formatSize(snap.TotalSize),
		snap.Segments,
	)
}

// formatSize converts bytes to a human-readable size
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// describeStartError maps resolver failures to actionable messages.
func describeStartError(err error) error {
	switch {
	case errors.Is(err, display.ErrGeometryNotFound):
		return fmt.Errorf("%w - run 'screenrec displays' to list connected outputs", err)
	case errors.Is(err, display.ErrNoWindowSelected):
		return fmt.Errorf("%w - pass --window to pick one", err)
	default:
		return err
	}
}

// outputNameForSplit routes the concat result through a temporary name in
// split mode, where the final name is assigned by the mux step.
func outputNameForSplit(name string, split bool) string {
	if split {
		return "video_combined"
	}
	return name
}

// printMetadata probes the finished file and prints its details. Probe
// failures are non-fatal; fields degrade to "N/A".
func printMetadata(path string) {
	meta, err := probe.New().Probe(path)
	if err != nil {
		Debug("probe: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", meta.DurationText())
	_, _ = fmt.Fprintf(w, "Resolution:\t%s\n", meta.ResolutionText())
	_, _ = fmt.Fprintf(w, "Video Codec:\t%s\n", meta.VideoCodecText())
	_, _ = fmt.Fprintf(w, "Audio Codec:\t%s\n", meta.AudioCodecText())
	_ = w.Flush()
}

func saveRecord(rc *session.Record) {
	store, err := session.NewStore()
	if err != nil {
		Debug("session store: %v", err)
		return
	}
	if err := store.Save(rc); err != nil {
		Debug("failed to save session record: %v", err)
	}
}
