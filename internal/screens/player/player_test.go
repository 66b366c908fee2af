package player

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/playback"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screens/screenstest"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// run executes cmd and feeds its message back, ignoring batches and
// cursor blink commands that do not return one of our messages.
func run(t *testing.T, s *Screen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case openedMsg, gradedMsg, completedMsg:
		s.Update(msg)
	default:
		t.Fatalf("unexpected message %T", msg)
	}
}

func typeAnswer(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

type failingCompleter struct{ err error }

func (f failingCompleter) MarkComplete(context.Context, string) error { return f.err }

func TestPlayThroughDemoLesson(t *testing.T) {
	env, st, refreshes := screenstest.Env(t, lesson.RoleStudent)
	id := screenstest.DemoLessonID(t, st)

	s := New(env, id)
	run(t, s, s.Init())

	if s.Title() != "Exponential equations" {
		t.Fatalf("Title = %q", s.Title())
	}
	if s.view.Tag != block.TagTheory {
		t.Fatalf("first block = %s, want THEORY", s.view.Tag)
	}

	s.Update(specialKey(tea.KeyEnter))
	if s.view.Tag != block.TagTask || !s.typing() {
		t.Fatalf("expected an open task, got %+v", s.view)
	}
	if _, text := s.taskText(s.view.TaskRef); text != "Solve 2^(x+1) = 16." {
		t.Errorf("task text = %q", text)
	}

	// Enter with no answer is refused with a notice.
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil || s.banner == "" {
		t.Fatalf("expected a notice and no grading, got banner %q", s.banner)
	}

	typeAnswer(s, "3")
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if !s.view.Submitting {
		t.Error("expected the task to show as submitting")
	}
	run(t, s, cmd)
	if s.view.Result == nil || !s.view.Result.Correct {
		t.Fatalf("expected a correct result, got %+v", s.view.Result)
	}

	s.Update(specialKey(tea.KeyEnter))
	typeAnswer(s, "7")
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)
	if s.view.Result == nil || s.view.Result.Correct {
		t.Fatalf("expected an incorrect result, got %+v", s.view.Result)
	}

	s.Update(specialKey(tea.KeyEnter)) // TASK_GROUP
	s.Update(specialKey(tea.KeyEnter)) // CHECK
	if !s.view.Final {
		t.Fatalf("expected the last block, got %+v", s.view)
	}
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)

	if s.player.State() != playback.Completed {
		t.Fatalf("state = %s, want completed", s.player.State())
	}
	if len(*refreshes) != 1 {
		t.Errorf("expected one refresh, got %d", len(*refreshes))
	}
	p, err := st.Lessons().GetWithProgress(lesson.WithIdentity(context.Background(), env.Identity), id)
	if err != nil || !p.Completed {
		t.Errorf("completion not recorded: %v", err)
	}

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected Enter on the completed lesson to leave")
	}
}

func TestCompletionFailureCanBeRetried(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleStudent)
	id, err := st.Lessons().Create(context.Background(), "g", lesson.Draft{
		Title:  "One",
		Blocks: []block.Wire{{Type: "CHECK"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	env.Completer = failingCompleter{err: errors.New("offline")}

	s := New(env, id)
	run(t, s, s.Init())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)
	if s.player.State() == playback.Completed {
		t.Fatal("completion should have failed")
	}
	if !strings.Contains(s.banner, "try again") {
		t.Errorf("banner = %q", s.banner)
	}

	s.env.Completer = st.Lessons()
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)
	if s.player.State() != playback.Completed {
		t.Fatal("retry should complete the lesson")
	}
}

func TestUnauthorizedGradingEndsSession(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleStudent)
	id := screenstest.DemoLessonID(t, st)

	s := New(env, id)
	run(t, s, s.Init())
	s.Update(specialKey(tea.KeyEnter))
	typeAnswer(s, "3")
	_, cmd := s.Update(specialKey(tea.KeyEnter))

	msg := cmd().(gradedMsg)
	msg.err = lesson.ErrUnauthorized
	s.Update(msg)

	if s.fatal == "" {
		t.Fatal("expected the session to end")
	}
	if _, ok := s.player.Feedback(1); ok {
		t.Error("nothing should be recorded for an unauthorized attempt")
	}
	_, cmd = s.Update(keyPress('x'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected any key to leave")
	}
}

func TestLoadFailureShowsError(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleStudent)
	s := New(env, "missing")
	run(t, s, s.Init())

	if s.fatal == "" {
		t.Fatal("expected a load error")
	}
	if !strings.Contains(s.fatal, "not found") {
		t.Errorf("fatal = %q", s.fatal)
	}
}

func TestPrevKeepsAnswer(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleStudent)
	id := screenstest.DemoLessonID(t, st)

	s := New(env, id)
	run(t, s, s.Init())
	s.Update(specialKey(tea.KeyEnter))
	typeAnswer(s, "42")

	s.Update(tea.KeyPressMsg{Code: 'b', Mod: tea.ModCtrl})
	if s.view.Position != 1 {
		t.Fatalf("position = %d, want 1", s.view.Position)
	}
	s.Update(specialKey(tea.KeyEnter))
	if got := s.input.Value(); got != "42" {
		t.Errorf("answer after returning = %q, want 42", got)
	}
}

func TestCloseDropsLateResults(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleStudent)
	id := screenstest.DemoLessonID(t, st)

	s := New(env, id)
	run(t, s, s.Init())
	s.Update(specialKey(tea.KeyEnter))
	typeAnswer(s, "3")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	msg := cmd()

	s.Close()
	s.Update(msg)
	if _, ok := s.player.Feedback(1); ok {
		t.Error("a result arriving after Close must be dropped")
	}
}
