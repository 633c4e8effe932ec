// Package concat merges ordered segment files into a single output file with
// regenerated timestamps, using ffmpeg's concat demuxer.
package concat

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrEmptySegmentList is returned when a merge is requested with no segments.
// No output file is produced.
var ErrEmptySegmentList = errors.New("no recording segments to combine")

const (
	outputPrefix = "screenrecording"
	manifestName = "segments.txt"
)

// Concatenator merges segment files under one output directory.
type Concatenator struct {
	outputDir string

	// command constructs the merge process. Overridable in tests.
	command func(name string, arg ...string) *exec.Cmd
}

// New creates a Concatenator writing into outputDir.
func New(outputDir string) *Concatenator {
	return &Concatenator{
		outputDir: outputDir,
		command:   exec.Command,
	}
}

// Join merges the ordered segment files into one mp4, re-encoding with
// timestamp regeneration to repair drift across segment boundaries. When
// outputName is empty a default screenrecording<K>.mp4 name is chosen.
//
// Segment files and the manifest are deleted only after a successful merge.
// A failed merge keeps them on disk so the raw footage is never lost.
func (c *Concatenator) Join(segmentPaths []string, outputName string) (string, error) {
	if len(segmentPaths) == 0 {
		return "", ErrEmptySegmentList
	}

	manifest := filepath.Join(c.outputDir, manifestName)
	if err := writeManifest(manifest, segmentPaths); err != nil {
		return "", err
	}

	outputPath := filepath.Join(c.outputDir, resolveOutputName(c.outputDir, outputName))

	cmd := c.command("ffmpeg", joinArgs(manifest, outputPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to combine segments (raw segments kept in %s): %w\n%s",
			c.outputDir, err, string(out))
	}

	c.removeIntermediates(segmentPaths, manifest)
	return outputPath, nil
}

// MuxAudio combines a video-only file and a separately captured audio file
// into the final output, copying the video stream. Used by the split-stream
// recording mode. Inputs are removed only on success.
func (c *Concatenator) MuxAudio(videoPath, audioPath, outputName string) (string, error) {
	outputPath := filepath.Join(c.outputDir, resolveOutputName(c.outputDir, outputName))

	cmd := c.command("ffmpeg",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to mux audio (raw streams kept in %s): %w\n%s",
			c.outputDir, err, string(out))
	}

	c.removeIntermediates([]string{videoPath, audioPath}, "")
	return outputPath, nil
}

// OrphanedIntermediates lists segment files, capture logs, and manifests left
// behind in the output directory, typically after a failed merge.
func (c *Concatenator) OrphanedIntermediates() ([]string, error) {
	entries, err := os.ReadDir(c.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case name == manifestName,
			strings.HasPrefix(name, "segment_") && strings.HasSuffix(name, ".mp4"),
			strings.HasPrefix(name, "segment_") && strings.HasSuffix(name, ".ffmpeg.log"):
			orphans = append(orphans, filepath.Join(c.outputDir, name))
		}
	}
	return orphans, nil
}

func (c *Concatenator) removeIntermediates(paths []string, manifest string) {
	for _, p := range paths {
		_ = os.Remove(p)
		_ = os.Remove(p + ".ffmpeg.log")
	}
	if manifest != "" {
		_ = os.Remove(manifest)
	}
}

// writeManifest writes the concat demuxer file list, one segment per line.
func writeManifest(path string, segmentPaths []string) error {
	var b strings.Builder
	for _, seg := range segmentPaths {
		fmt.Fprintf(&b, "file '%s'\n", seg)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write segment manifest: %w", err)
	}
	return nil
}

// joinArgs builds the ffmpeg concat invocation. Timestamps are regenerated
// and video sync repaired so pause/resume boundaries don't produce drift.
func joinArgs(manifest, outputPath string) []string {
	return []string{
		"-fflags", "+genpts",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-vsync", "2",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-af", "aresample=async=1",
		"-ar", "44100",
		"-ac", "2",
		outputPath,
	}
}

// resolveOutputName returns the file name for the final recording. A
// user-supplied name gets an mp4 extension; otherwise the next unused
// screenrecording<K>.mp4 index is chosen, starting after the count of
// existing recordings.
func resolveOutputName(dir, name string) string {
	if name != "" {
		if !strings.HasSuffix(name, ".mp4") {
			name += ".mp4"
		}
		return name
	}

	count := 0
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			n := entry.Name()
			if strings.HasPrefix(n, outputPrefix) && strings.HasSuffix(n, ".mp4") {
				count++
			}
		}
	}

	k := count + 1
	for {
		candidate := fmt.Sprintf("%s%d.mp4", outputPrefix, k)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		k++
	}
}
