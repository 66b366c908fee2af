package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/authoring"
)

var exportCmd = &cobra.Command{
	Use:   "export <lesson-id>",
	Short: "Write a lesson as a YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		ctx := callContext(cmd.Context())
		b, err := openBackend(ctx, log)
		if err != nil {
			return err
		}
		defer b.Close()

		ed, err := authoring.Load(ctx, authoringDeps(b), args[0])
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		return ed.Export(w)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create or overwrite a lesson from a YAML document",
	Long: `Read a lesson document written by export. With --lesson the existing
lesson is overwritten; otherwise a new lesson is created in the current
group. The lesson is validated before anything is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetString("lesson")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		ctx := callContext(cmd.Context())
		b, err := openBackend(ctx, log)
		if err != nil {
			return err
		}
		defer b.Close()

		var ed *authoring.Editor
		if lessonID != "" {
			ed, err = authoring.Load(ctx, authoringDeps(b), lessonID)
		} else {
			ed, err = authoring.New(ctx, authoringDeps(b), cfg.GroupID)
		}
		if err != nil {
			return err
		}
		if err := ed.Import(f); err != nil {
			return err
		}
		if err := ed.Submit(ctx); err != nil {
			return err
		}

		log.Info("lesson imported", "lesson_id", ed.LessonID(), "blocks", ed.Len())
		fmt.Println(ed.LessonID())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().String("lesson", "", "Overwrite this lesson instead of creating one")
}

func authoringDeps(b *backend) authoring.Deps {
	return authoring.Deps{
		Reader:  b.env.Reader,
		Writer:  b.env.Writer,
		Tasks:   b.env.Tasks,
		Subject: cfg.Subject,
	}
}
