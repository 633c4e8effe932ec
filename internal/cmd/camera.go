package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/camera"
	"github.com/screenrec/screenrec/internal/config"
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Run the camera preview",
	Long: `Open the configured camera device and report the preview frame feed until
interrupted. Nothing is recorded; this verifies the camera works and shows
the delivered frame rate.`,
	RunE: runCamera,
}

func init() {
	rootCmd.AddCommand(cameraCmd)
}

func runCamera(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var frames atomic.Int64
	preview := camera.NewPreview(camera.Options{
		Device:   cfg.Camera.Device,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		Interval: cfg.Camera.Interval,
	}, func(camera.Frame) {
		frames.Add(1)
	})

	if err := preview.Start(); err != nil {
		return err
	}
	defer preview.Stop()

	fmt.Printf("Previewing %s at %dx%d (Ctrl+C to stop)\n",
		cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	last := int64(0)
	for {
		select {
		case <-ticker.C:
			total := frames.Load()
			fmt.Printf("\r\033[K%d frames (%d/s)", total, total-last)
			last = total
		case <-sigs:
			fmt.Println("\nStopping camera preview.")
			return nil
		}
	}
}
