package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved recording sessions",
	Long:  `List saved recording sessions with their source, quality, and output file.`,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access session store: %w", err)
	}

	records, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No recorded sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STARTED\tSOURCE\tQUALITY\tSEGMENTS\tSTATUS\tOUTPUT")
	_, _ = fmt.Fprintln(w, "-------\t------\t-------\t--------\t------\t------")

	for _, rec := range records {
		output := rec.OutputFile
		if output != "" {
			output = filepath.Base(output)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Source,
			rec.Quality,
			rec.Segments,
			rec.Status,
			output,
		)
	}

	_ = w.Flush()
	return nil
}
