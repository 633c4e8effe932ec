package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/screenrec/screenrec/internal/display"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List connected display outputs",
	Long:  `List the connected display outputs that can be captured with 'record --monitor'.`,
	RunE:  runDisplays,
}

func init() {
	rootCmd.AddCommand(displaysCmd)
}

func runDisplays(cmd *cobra.Command, args []string) error {
	outputs, err := display.NewResolver().Outputs()
	if err != nil {
		return fmt.Errorf("failed to list displays: %w", err)
	}

	if len(outputs) == 0 {
		fmt.Println("No connected displays found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tGEOMETRY\tOFFSET\tPRIMARY")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t-------")

	for _, out := range outputs {
		primary := ""
		if out.Primary {
			primary = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			out.Name,
			out.Rect.Size(),
			out.Rect.Offset(),
			primary,
		)
	}

	_ = w.Flush()
	return nil
}
