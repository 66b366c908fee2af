package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview <lesson-id>",
	Short: "Print a lesson without playing it",
	Long: `Print every block of a lesson as a learner would see it.

Nothing is graded or recorded, so this is safe to run against a shared
lesson server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := callContext(cmd.Context())
		b, err := openBackend(ctx, log)
		if err != nil {
			return err
		}
		defer b.Close()

		l, err := b.env.Reader.Get(ctx, args[0])
		if err != nil {
			return err
		}
		// Task statements are decoration; refs are printed without them.
		catalog, err := b.env.Tasks.Catalog(ctx, cfg.Subject)
		if err != nil {
			log.Warn("task catalog unavailable", "error", err)
		}
		printLesson(os.Stdout, l, catalog)
		return nil
	},
}

func printLesson(w io.Writer, l lesson.Lesson, catalog lesson.Catalog) {
	fmt.Fprintln(w, theme.Title.Render(l.Title))
	fmt.Fprintln(w)
	for i, b := range l.Blocks {
		fmt.Fprintf(w, "── %d/%d %s ──\n", i+1, len(l.Blocks), b.Tag().Label())
		fmt.Fprintln(w, block.Visit[string](b.Content, previewer{catalog: catalog}))
		fmt.Fprintln(w)
	}
}

type previewer struct {
	catalog lesson.Catalog
}

func (previewer) VisitTheory(t block.Theory) string {
	var sb strings.Builder
	for _, sp := range block.FormatTheory(t.Text) {
		switch {
		case sp.Break:
			sb.WriteString("\n")
		case sp.Bold:
			sb.WriteString(theme.Strong.Render(sp.Text))
		default:
			sb.WriteString(sp.Text)
		}
	}
	return sb.String()
}

func (p previewer) VisitTask(t block.Task) string {
	if task, ok := p.catalog.Find(t.Ref); ok {
		return fmt.Sprintf("Task %d: %s", task.TaskNumber, task.Text)
	}
	return "Task " + t.Ref
}

func (previewer) VisitTaskGroup(g block.TaskGroup) string {
	return fmt.Sprintf("Practice drill: %d tasks · %s", g.Count, block.TopicName(g.TopicID))
}

func (previewer) VisitCheck(c block.Check) string {
	return theme.Correct.Render(block.CheckMessage(c))
}
