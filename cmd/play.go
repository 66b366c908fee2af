package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/app"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/editor"
	"github.com/abhisek/examprep/internal/screens/player"
)

var playCmd = &cobra.Command{
	Use:   "play <lesson-id>",
	Short: "Play one lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return runTUI(cmd, func(env screens.Env) screen.Screen {
			return player.New(env, id)
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [lesson-id]",
	Short: "Edit a lesson, or start a new one in the current group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Identity().Role != lesson.RoleTeacher {
			return fmt.Errorf("editing lessons requires --role TEACHER")
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return runTUI(cmd, func(env screens.Env) screen.Screen {
			return editor.New(env, id)
		})
	},
}

// runTUI opens the backend and runs the app starting on the screen
// built by start. Logs go to EXAMPREP_LOG_FILE while the TUI is up.
func runTUI(cmd *cobra.Command, start func(screens.Env) screen.Screen) error {
	tuiLog := logger.Nop()
	if cfg.LogFile != "" {
		l, err := logger.New(cfg.LogMode, cfg.LogFile)
		if err != nil {
			return err
		}
		defer l.Sync()
		tuiLog = l
	}

	b, err := openBackend(cmd.Context(), tuiLog)
	if err != nil {
		return err
	}
	defer b.Close()

	return app.Run(app.Options{
		Env:   b.env,
		Hub:   b.hub,
		Start: start(b.env),
	})
}
