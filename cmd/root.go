package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/lessonlist"
	"github.com/abhisek/examprep/internal/store"
)

// Settings resolved before any command runs.
var (
	cfg config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "examprep",
	Short: "Exam preparation lessons in the terminal",
	Long: `examprep plays and authors exam preparation lessons made of theory,
tasks, practice drills and checkpoints. Lessons come from a local SQLite
database, or from a lesson server when --api is set.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, func(env screens.Env) screen.Screen {
			return lessonlist.New(env)
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides EXAMPREP_DB)")
	flags.String("api", "", "Lesson server base URL (overrides EXAMPREP_API_URL)")
	flags.String("role", "", "Act as TEACHER or STUDENT (overrides EXAMPREP_ROLE)")
	flags.String("group", "", "Lesson group (overrides EXAMPREP_GROUP)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the environment, applies flag overrides and builds the
// logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("db"); v != "" {
		c.DBPath = v
	}
	if v, _ := flags.GetString("api"); v != "" {
		c.APIURL = v
	}
	if v, _ := flags.GetString("role"); v != "" {
		c.Role = v
	}
	if v, _ := flags.GetString("group"); v != "" {
		c.GroupID = v
	}
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logger.New(c.LogMode)
	if err != nil {
		return err
	}
	cfg, log = c, l
	return nil
}

// resolveDBPath returns the database path from --db or EXAMPREP_DB, then
// the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
