package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/progress"
	"github.com/abhisek/examprep/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the learner's completions and answer history",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		if learner == "" {
			learner = cfg.LearnerID
		}
		if cfg.Remote() {
			return fmt.Errorf("stats reads the local database; unset --api")
		}

		who := cfg.Identity()
		who.LearnerID = learner
		ctx := lesson.WithIdentity(cmd.Context(), who)
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.Lessons().ListByGroup(ctx, cfg.GroupID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		fmt.Printf("Group %s: %d/%d lessons completed\n\n", cfg.GroupID, progress.Completed(list), len(list))

		attempts, err := st.Attempts(ctx, learner)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Printf("No answers recorded for %s yet.\n", learner)
			return nil
		}
		printAttemptStats(attempts)
		return nil
	},
}

type taskTally struct {
	tries, correct int
}

func printAttemptStats(attempts []store.AttemptRecord) {
	tallies := map[string]*taskTally{}
	var correct int
	for _, a := range attempts {
		t := tallies[a.TaskID]
		if t == nil {
			t = &taskTally{}
			tallies[a.TaskID] = t
		}
		t.tries++
		if a.Correct {
			t.correct++
			correct++
		}
	}

	ids := make([]string, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%-8s  %6s  %8s\n", "Task", "Tries", "Correct")
	fmt.Println(strings.Repeat("─", 26))
	for _, id := range ids {
		t := tallies[id]
		fmt.Printf("%-8s  %6d  %8d\n", truncate(id, 8), t.tries, t.correct)
	}
	fmt.Println(strings.Repeat("─", 26))
	fmt.Printf("%-8s  %6d  %8d  (%.0f%%)\n", "TOTAL", len(attempts), correct,
		100*float64(correct)/float64(len(attempts)))
}

func init() {
	statsCmd.Flags().String("learner", "", "Learner id (defaults to EXAMPREP_LEARNER)")
}
