package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/progress"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the lessons of the current group",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := callContext(cmd.Context())
		b, err := openBackend(ctx, log)
		if err != nil {
			return err
		}
		defer b.Close()

		list, err := b.env.Reader.ListByGroup(ctx, cfg.GroupID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		if len(list) == 0 {
			fmt.Printf("No lessons in group %q.\n", cfg.GroupID)
			return nil
		}

		fmt.Printf("%-36s  %-40s  %6s  %s\n", "ID", "Title", "Blocks", "Done")
		fmt.Println(strings.Repeat("─", 94))
		for _, l := range list {
			done := ""
			if l.Completed {
				done = "✓"
			}
			fmt.Printf("%-36s  %-40s  %6d  %s\n", l.ID, truncate(l.Title, 40), l.BlockCount, done)
		}
		fmt.Printf("\n%d/%d completed\n", progress.Completed(list), len(list))
		return nil
	},
}
