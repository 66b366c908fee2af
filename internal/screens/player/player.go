// Package player is the learner-facing lesson screen.
package player

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/playback"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// Messages carrying asynchronous results back to the screen.
type (
	openedMsg struct {
		player  *playback.Player
		catalog lesson.Catalog
		err     error
	}

	gradedMsg struct {
		ticket  playback.Ticket
		verdict lesson.Verdict
		err     error
	}

	completedMsg struct {
		ticket playback.CompletionTicket
		err    error
	}
)

const answerPlaceholder = "Type your answer..."

// Screen plays one lesson.
type Screen struct {
	env      screens.Env
	lessonID string

	player  *playback.Player
	catalog lesson.Catalog
	view    playback.View
	input   components.TextInput

	// fatal ends the session; any key leaves the screen.
	fatal string
	// banner is a dismissable notice, e.g. a failed completion.
	banner string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

func New(env screens.Env, lessonID string) *Screen {
	return &Screen{env: env, lessonID: lessonID}
}

func (s *Screen) Init() tea.Cmd {
	env, id := s.env, s.lessonID
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		p, err := playback.Open(ctx, playback.Deps{
			Reader:    env.Reader,
			Grader:    env.Grader,
			Completer: env.Completer,
			Notifier:  env.Notifier,
			Log:       env.Logger(),
		}, id)
		if err != nil {
			return openedMsg{err: err}
		}
		// Task text is decoration; a failed catalog fetch leaves refs.
		var catalog lesson.Catalog
		if env.Tasks != nil {
			catalog, _ = env.Tasks.Catalog(ctx, env.Subject)
		}
		return openedMsg{player: p, catalog: catalog}
	}
}

func (s *Screen) Title() string {
	if s.player == nil {
		return "Lesson"
	}
	return s.player.Lesson().Title
}

// Close disposes the playback session.
func (s *Screen) Close() {
	if s.player != nil {
		s.player.Close()
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.err != nil {
			s.fatal = msg.err.Error()
			return s, nil
		}
		s.player = msg.player
		s.catalog = msg.catalog
		return s, s.refresh()

	case gradedMsg:
		return s.handleGraded(msg)

	case completedMsg:
		return s.handleCompleted(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// refresh re-reads the view and resets the answer input when the current
// block is an open task.
func (s *Screen) refresh() tea.Cmd {
	prev := s.view
	s.view = s.player.Render()
	if s.view.Tag != block.TagTask || s.view.Locked {
		return nil
	}
	if prev.Position == s.view.Position && prev.Tag == block.TagTask && s.input.Model.Focused() {
		return nil
	}
	s.input = components.NewTextInput(answerPlaceholder, s.view.Answer, false, 64)
	return s.input.Init()
}

// typing reports whether keystrokes go to the answer input.
func (s *Screen) typing() bool {
	return s.player != nil && s.view.Tag == block.TagTask && !s.view.Locked && !s.view.Submitting
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.fatal != "" {
		return s, pop
	}
	if s.player == nil {
		return s, nil
	}
	s.banner = ""

	if s.player.State() == playback.Completed {
		if msg.String() == "enter" {
			return s, pop
		}
		return s, nil
	}

	key := msg.String()
	if s.typing() {
		switch key {
		case "enter":
			return s.submit()
		case "ctrl+b":
			return s.prev()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if err := s.player.SetAnswer(s.input.Value()); err != nil {
			s.env.Logger().Debug("answer not recorded", "error", err)
		}
		s.view = s.player.Render()
		return s, cmd
	}

	switch key {
	case "enter", "right", "l", "n":
		return s.next()
	case "left", "h", "b", "ctrl+b":
		return s.prev()
	}
	return s, nil
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	t, err := s.player.BeginSubmit()
	if err != nil {
		if errors.Is(err, playback.ErrEmptyAnswer) {
			s.banner = "Type an answer first."
		}
		return s, nil
	}
	s.view = s.player.Render()

	env := s.env
	return s, func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		v, err := env.Grader.Grade(ctx, t.Attempt)
		return gradedMsg{ticket: t, verdict: v, err: err}
	}
}

func (s *Screen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	if s.player == nil {
		return s, nil
	}
	err := s.player.FinishSubmit(msg.ticket, msg.verdict, msg.err)
	switch {
	case errors.Is(err, lesson.ErrUnauthorized):
		s.fatal = "Your session is no longer valid. Sign in again to continue."
		return s, nil
	case errors.Is(err, playback.ErrClosed):
		return s, nil
	}
	return s, s.refresh()
}

func (s *Screen) next() (screen.Screen, tea.Cmd) {
	step, err := s.player.Advance()
	switch {
	case errors.Is(err, playback.ErrGated):
		s.banner = "Answer the task before moving on."
		return s, nil
	case err != nil:
		return s, nil
	case step == playback.StepMoved:
		return s, s.refresh()
	}

	t, err := s.player.BeginComplete()
	if err != nil {
		return s, nil
	}
	s.view = s.player.Render()

	env := s.env
	return s, func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		return completedMsg{ticket: t, err: env.Completer.MarkComplete(ctx, t.LessonID)}
	}
}

func (s *Screen) handleCompleted(msg completedMsg) (screen.Screen, tea.Cmd) {
	if s.player == nil {
		return s, nil
	}
	err := s.player.FinishComplete(msg.ticket, msg.err)
	var cerr *playback.CompletionError
	switch {
	case errors.Is(err, lesson.ErrUnauthorized):
		s.fatal = "Your session is no longer valid. Sign in again to continue."
	case errors.As(err, &cerr):
		s.banner = "Could not save your progress. Press Enter to try again."
	}
	s.view = s.player.Render()
	return s, nil
}

func (s *Screen) prev() (screen.Screen, tea.Cmd) {
	if !s.player.Prev() {
		return s, nil
	}
	return s, s.refresh()
}

func pop() tea.Msg { return router.PopScreenMsg{} }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.fatal != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.player == nil:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.player.State() == playback.Completed:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to lessons"}}
	case s.typing():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check answer"},
			{Key: "Ctrl+B", Description: "Previous"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	next := "Next"
	if s.view.Final {
		next = "Finish"
	}
	return []layout.KeyHint{
		{Key: "Enter/→", Description: next},
		{Key: "←", Description: "Previous"},
		{Key: "Esc", Description: "Leave"},
	}
}

// taskText returns the task statement for a ref, or a placeholder when
// the catalog does not list it.
func (s *Screen) taskText(ref string) (int, string) {
	if t, ok := s.catalog.Find(ref); ok {
		return t.TaskNumber, t.Text
	}
	return 0, fmt.Sprintf("Task %s", strings.TrimSpace(ref))
}
