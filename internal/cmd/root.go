package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/config"
	"github.com/screenrec/screenrec/internal/version"
)

var (
	cfgFile string
	debug   bool
)

// Debug prints a message if debug mode is enabled
func Debug(format string, args ...interface{}) {
	if debug {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

var rootCmd = &cobra.Command{
	Use:   "screenrec",
	Short: "Screenrec - segment-based screen recording",
	Long: `Screenrec records your screen through ffmpeg with pause/resume support.

Start an interactive recording:
  screenrec record
  screenrec record --monitor HDMI-1 --quality high

List capture sources:
  screenrec displays

Review past recordings:
  screenrec sessions

Check prerequisites:
  screenrec doctor`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		config.File = cfgFile
	})

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.screenrec/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
