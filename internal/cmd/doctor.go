package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check prerequisites",
	Long:  `Check that the external tools screenrec depends on are installed.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	tools := []struct {
		name string
		why  string
	}{
		{"ffmpeg", "screen capture, concatenation, and muxing"},
		{"ffprobe", "output file metadata"},
		{"xrandr", "monitor geometry"},
		{"xwininfo", "interactive window selection"},
		{"arecord", "split-stream audio capture"},
	}

	ok := true
	for _, tool := range tools {
		if _, err := exec.LookPath(tool.name); err != nil {
			fmt.Printf("  [missing] %s - %s\n", tool.name, tool.why)
			ok = false
		} else {
			fmt.Printf("  [ok]      %s\n", tool.name)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  [error]   config: %v\n", err)
		ok = false
	} else {
		fmt.Printf("  [ok]      output directory: %s\n", cfg.OutputDir)
		fmt.Printf("  [ok]      audio devices: %v\n", cfg.Audio.Devices)
	}

	if !ok {
		return fmt.Errorf("some prerequisites are missing")
	}
	fmt.Println("\nAll prerequisites met.")
	return nil
}
