package editor

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/authoring"
	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/screenstest"
	"github.com/abhisek/examprep/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	ctrlS = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
)

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func load(t *testing.T, s *Screen) {
	t.Helper()
	msg, ok := s.Init()().(loadedMsg)
	require.True(t, ok)
	s.Update(msg)
}

func TestCreateLesson(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)
	require.NotNil(t, s.ed)
	assert.Equal(t, "New lesson", s.Title())

	s.Update(keyPress('t'))
	assert.True(t, s.CapturingInput())
	typeText(s, "Fractions")
	s.Update(enter)
	assert.Equal(t, "Fractions", s.ed.Title())
	assert.False(t, s.CapturingInput())

	// A new TASK starts on the first catalog task; pick the second.
	s.Update(keyPress('a'))
	s.Update(keyPress('2'))
	require.Equal(t, 1, s.ed.Len())
	assert.Equal(t, s.ed.Catalog()[0].ID, s.ed.Entries()[0].Block.Content.(block.Task).Ref)

	s.Update(enter)
	require.Equal(t, pickingTask, s.mode)
	s.Update(keyPress('j'))
	s.Update(enter)
	assert.Equal(t, s.ed.Catalog()[1].ID, s.ed.Entries()[0].Block.Content.(block.Task).Ref)

	// A drill with a zero count blocks the save and is selected.
	s.Update(keyPress('a'))
	s.Update(keyPress('3'))
	require.Equal(t, 1, s.selected)
	s.Update(enter)
	s.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	typeText(s, "0")
	s.Update(enter)
	s.Update(keyPress('k'))
	require.Equal(t, 0, s.selected)

	_, cmd := s.Update(ctrlS)
	assert.Nil(t, cmd)
	assert.Contains(t, s.errMsg, "block 2")
	assert.Equal(t, 1, s.selected)

	s.Update(keyPress('d'))
	require.Equal(t, 1, s.ed.Len())

	_, cmd = s.Update(ctrlS)
	require.NotNil(t, cmd)
	assert.Equal(t, "Saving...", s.status)

	_, cmd = s.Update(cmd())
	assert.Equal(t, "Saved.", s.status)
	assert.Empty(t, s.errMsg)
	assert.NotEmpty(t, s.ed.LessonID())
	require.NotNil(t, cmd)
	refresh, ok := cmd().(screens.RefreshMsg)
	require.True(t, ok)
	assert.Equal(t, store.DemoGroupID, refresh.GroupID)

	list, err := st.Lessons().ListByGroup(context.Background(), store.DemoGroupID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEditExistingLesson(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleTeacher)
	id := screenstest.DemoLessonID(t, st)
	s := New(env, id)
	load(t, s)
	require.Equal(t, 5, s.ed.Len())

	// Move the CHECK block up one place, then remove the drill above it.
	for range 4 {
		s.Update(keyPress('j'))
	}
	s.Update(keyPress('K'))
	assert.Equal(t, 3, s.selected)
	s.Update(keyPress('j'))
	s.Update(keyPress('d'))
	assert.Equal(t, 4, s.ed.Len())

	// Edit the CHECK message.
	require.Equal(t, 3, s.selected)
	s.Update(enter)
	require.Equal(t, editingField, s.mode)
	typeText(s, "Well done")
	s.Update(enter)

	_, cmd := s.Update(ctrlS)
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.Equal(t, "Saved.", s.status)

	got, err := st.Lessons().Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 4)
	assert.Equal(t, block.Check{Message: "Well done"}, got.Blocks[3].Content)
}

func TestTaskGroupFields(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)

	s.Update(keyPress('a'))
	s.Update(keyPress('3'))
	require.Equal(t, block.TagTaskGroup, s.ed.Entries()[0].Block.Tag())

	// Letters are dropped from the numeric count field.
	s.Update(enter)
	for range 2 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	}
	typeText(s, "x12")
	s.Update(enter)
	assert.Equal(t, 12, s.ed.Entries()[0].Block.Content.(block.TaskGroup).Count)

	s.Update(keyPress('o'))
	require.Equal(t, pickingTopic, s.mode)
	s.Update(keyPress('2'))
	g := s.ed.Entries()[0].Block.Content.(block.TaskGroup)
	require.NotNil(t, g.TopicID)
	assert.Equal(t, block.Topics[0].ID, *g.TopicID)
}

func TestTheoryNewlineEscape(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)

	s.Update(keyPress('a'))
	s.Update(keyPress('1'))
	s.Update(enter)
	typeText(s, `one\ntwo`)
	s.Update(enter)
	assert.Equal(t, "one\ntwo", s.ed.Entries()[0].Block.Content.(block.Theory).Text)
	assert.Equal(t, "one ⏎ two", summarize(s.ed.Entries()[0].Block, s))
}

func TestEscCancelsField(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)

	s.Update(keyPress('t'))
	typeText(s, "Draft")
	s.Update(esc)
	assert.False(t, s.CapturingInput())
	assert.Empty(t, s.ed.Title())
}

func TestBusySave(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)

	s.Update(savedMsg{err: authoring.ErrBusy})
	assert.Equal(t, "A save is already in progress.", s.status)

	s.Update(savedMsg{err: errors.New("disk full")})
	assert.Equal(t, "disk full", s.errMsg)
}

func TestEmptyLessonRejected(t *testing.T) {
	env, _, _ := screenstest.Env(t, lesson.RoleTeacher)
	s := New(env, "")
	load(t, s)

	s.Update(keyPress('t'))
	typeText(s, "Empty")
	s.Update(enter)
	_, cmd := s.Update(ctrlS)
	assert.Nil(t, cmd)
	assert.Contains(t, s.errMsg, "at least one block")
}

func TestStudentCannotEdit(t *testing.T) {
	env, st, _ := screenstest.Env(t, lesson.RoleStudent)
	s := New(env, screenstest.DemoLessonID(t, st))
	load(t, s)

	assert.Nil(t, s.ed)
	assert.NotEmpty(t, s.fatal)
	assert.Contains(t, s.fatal, "unauthorized")

	_, cmd := s.Update(keyPress('x'))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
