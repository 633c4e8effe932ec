package concat

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// fakeCommand replaces ffmpeg with a shell stand-in. The real argument list
// is discarded; script decides success or failure.
func fakeCommand(script string) func(name string, arg ...string) *exec.Cmd {
	return func(name string, arg ...string) *exec.Cmd {
		return exec.Command("sh", "-c", script)
	}
}

func TestJoinEmptySegmentList(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	_, err := c.Join(nil, "")
	require.ErrorIs(t, err, ErrEmptySegmentList)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output or manifest is produced")
}

func TestJoinSuccessCleansUp(t *testing.T) {
	dir := t.TempDir()
	segs := []string{
		filepath.Join(dir, "segment_1.mp4"),
		filepath.Join(dir, "segment_2.mp4"),
	}
	for _, s := range segs {
		writeFile(t, s, "segment data")
		writeFile(t, s+".ffmpeg.log", "log data")
	}

	c := New(dir)
	c.command = fakeCommand("exit 0")

	out, err := c.Join(segs, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screenrecording1.mp4"), out)

	for _, s := range segs {
		assert.NoFileExists(t, s, "segments are deleted after a successful merge")
		assert.NoFileExists(t, s+".ffmpeg.log")
	}
	assert.NoFileExists(t, filepath.Join(dir, manifestName))
}

func TestJoinFailureKeepsSegments(t *testing.T) {
	dir := t.TempDir()
	seg := filepath.Join(dir, "segment_1.mp4")
	writeFile(t, seg, "segment data")

	c := New(dir)
	c.command = fakeCommand("echo 'muxing failed' >&2; exit 1")

	_, err := c.Join([]string{seg}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw segments kept")

	assert.FileExists(t, seg, "a failed merge never discards raw footage")
	assert.FileExists(t, filepath.Join(dir, manifestName))
}

func TestJoinWritesManifestInOrder(t *testing.T) {
	dir := t.TempDir()
	segs := []string{
		filepath.Join(dir, "segment_1.mp4"),
		filepath.Join(dir, "segment_2.mp4"),
		filepath.Join(dir, "segment_3.mp4"),
	}
	for _, s := range segs {
		writeFile(t, s, "x")
	}

	c := New(dir)
	// Fail so the manifest survives for inspection.
	c.command = fakeCommand("exit 1")

	_, err := c.Join(segs, "")
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	require.NoError(t, err)
	expected := fmt.Sprintf("file '%s'\nfile '%s'\nfile '%s'\n", segs[0], segs[1], segs[2])
	assert.Equal(t, expected, string(data))
}

func TestResolveOutputName(t *testing.T) {
	t.Run("user-supplied name gets mp4 extension", func(t *testing.T) {
		assert.Equal(t, "demo.mp4", resolveOutputName(t.TempDir(), "demo"))
		assert.Equal(t, "demo.mp4", resolveOutputName(t.TempDir(), "demo.mp4"))
	})

	t.Run("default name counts existing recordings", func(t *testing.T) {
		dir := t.TempDir()
		for i := 1; i <= 3; i++ {
			writeFile(t, filepath.Join(dir, fmt.Sprintf("screenrecording%d.mp4", i)), "x")
		}
		assert.Equal(t, "screenrecording4.mp4", resolveOutputName(dir, ""))
	})

	t.Run("default name skips occupied indices", func(t *testing.T) {
		dir := t.TempDir()
		// One existing recording, but its name already occupies index 2.
		writeFile(t, filepath.Join(dir, "screenrecording2.mp4"), "x")
		assert.Equal(t, "screenrecording3.mp4", resolveOutputName(dir, ""))
	})

	t.Run("empty directory starts at 1", func(t *testing.T) {
		assert.Equal(t, "screenrecording1.mp4", resolveOutputName(t.TempDir(), ""))
	})
}

func TestJoinArgs(t *testing.T) {
	args := joinArgs("/out/segments.txt", "/out/screenrecording1.mp4")
	assert.Equal(t, []string{
		"-fflags", "+genpts",
		"-f", "concat",
		"-safe", "0",
		"-i", "/out/segments.txt",
		"-vsync", "2",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-af", "aresample=async=1",
		"-ar", "44100",
		"-ac", "2",
		"/out/screenrecording1.mp4",
	}, args)
}

func TestMuxAudio(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "segment_1.mp4")
	audio := filepath.Join(dir, "audio.wav")
	writeFile(t, video, "v")
	writeFile(t, audio, "a")

	t.Run("success removes inputs", func(t *testing.T) {
		c := New(dir)
		c.command = fakeCommand("exit 0")

		out, err := c.MuxAudio(video, audio, "meeting")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "meeting.mp4"), out)
		assert.NoFileExists(t, video)
		assert.NoFileExists(t, audio)
	})

	t.Run("failure keeps inputs", func(t *testing.T) {
		writeFile(t, video, "v")
		writeFile(t, audio, "a")
		c := New(dir)
		c.command = fakeCommand("exit 1")

		_, err := c.MuxAudio(video, audio, "meeting2")
		require.Error(t, err)
		assert.FileExists(t, video)
		assert.FileExists(t, audio)
	})
}

func TestOrphanedIntermediates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "segment_1.mp4"), "x")
	writeFile(t, filepath.Join(dir, "segment_1.mp4.ffmpeg.log"), "x")
	writeFile(t, filepath.Join(dir, "segments.txt"), "x")
	writeFile(t, filepath.Join(dir, "screenrecording1.mp4"), "x")

	c := New(dir)
	orphans, err := c.OrphanedIntermediates()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "segment_1.mp4"),
		filepath.Join(dir, "segment_1.mp4.ffmpeg.log"),
		filepath.Join(dir, "segments.txt"),
	}, orphans, "finished recordings are never considered orphans")
}
