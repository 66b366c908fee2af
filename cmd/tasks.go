package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the task bank for the current subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		if subject == "" {
			subject = cfg.Subject
		}

		ctx := callContext(cmd.Context())
		b, err := openBackend(ctx, log)
		if err != nil {
			return err
		}
		defer b.Close()

		catalog, err := b.env.Tasks.Catalog(ctx, subject)
		if err != nil {
			return fmt.Errorf("task catalog: %w", err)
		}
		if len(catalog) == 0 {
			return fmt.Errorf("no tasks found for subject %q", subject)
		}

		fmt.Printf("%-8s  %4s  %s\n", "ID", "No.", "Text")
		fmt.Println(strings.Repeat("─", 80))
		for _, t := range catalog {
			fmt.Printf("%-8s  %4d  %s\n", truncate(t.ID, 8), t.TaskNumber, truncate(t.Text, 64))
		}

		fmt.Printf("\n%d tasks\n", len(catalog))
		return nil
	},
}

func init() {
	tasksCmd.Flags().String("subject", "", "Subject to list (overrides EXAMPREP_SUBJECT)")
}
