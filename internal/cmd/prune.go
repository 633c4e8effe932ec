package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/concat"
	"github.com/screenrec/screenrec/internal/config"
	"github.com/screenrec/screenrec/internal/session"
)

var pruneSessions bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Clean up leftover segment files",
	Long: `Clean up segment files, capture logs, and manifests left in the output
directory, typically after a failed merge.

A failed merge deliberately keeps the raw segments so footage is never lost;
prune them once you no longer need them. Use --sessions to also remove saved
session records.`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().BoolVar(&pruneSessions, "sessions", false, "also remove saved session records")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	orphans, err := concat.New(cfg.OutputDir).OrphanedIntermediates()
	if err != nil {
		return err
	}

	removed := 0
	for _, path := range orphans {
		if err := os.Remove(path); err != nil {
			fmt.Printf("Warning: failed to remove %s: %v\n", path, err)
			continue
		}
		Debug("Removed %s", path)
		removed++
	}

	if removed == 0 {
		fmt.Println("No leftover segment files.")
	} else {
		fmt.Printf("Removed %d leftover file(s) from %s.\n", removed, cfg.OutputDir)
	}

	if pruneSessions {
		store, err := session.NewStore()
		if err != nil {
			return fmt.Errorf("failed to access session store: %w", err)
		}
		records, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, rec := range records {
			if err := store.Delete(rec.ID); err != nil {
				fmt.Printf("Warning: failed to delete session %s: %v\n", rec.ID, err)
			}
		}
		fmt.Printf("Removed %d session record(s).\n", len(records))
	}

	return nil
}
