package authoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

type fakeBackend struct {
	mu      sync.Mutex
	lessons map[string]lesson.Lesson
	catalog lesson.Catalog
	getErr  error
	catErr  error
	saveErr error
	saved   []lesson.Draft
	created []lesson.Draft
	subject string

	// block, when set, holds Save until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) Get(_ context.Context, id string) (lesson.Lesson, error) {
	if f.getErr != nil {
		return lesson.Lesson{}, f.getErr
	}
	l, ok := f.lessons[id]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return l, nil
}

func (f *fakeBackend) GetWithProgress(context.Context, string) (lesson.Progress, error) {
	return lesson.Progress{}, errors.New("not used")
}

func (f *fakeBackend) ListByGroup(context.Context, string) ([]lesson.Summary, error) {
	return nil, errors.New("not used")
}

func (f *fakeBackend) Catalog(_ context.Context, subject string) (lesson.Catalog, error) {
	f.subject = subject
	return f.catalog, f.catErr
}

func (f *fakeBackend) Save(_ context.Context, _ string, d lesson.Draft) error {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, d)
	return nil
}

func (f *fakeBackend) Create(_ context.Context, _ string, d lesson.Draft) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.created = append(f.created, d)
	return "L-new", nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		lessons: map[string]lesson.Lesson{
			"L1": {
				ID: "L1", GroupID: "G1", Title: "Angles",
				Blocks: []block.Block{
					{Content: block.Theory{Text: "intro"}},
					{Content: block.Task{Ref: "T1"}},
				},
			},
		},
		catalog: lesson.Catalog{{ID: "T1", TaskNumber: 1}, {ID: "T2", TaskNumber: 2}},
	}
}

func teacherCtx() context.Context {
	return lesson.WithIdentity(context.Background(), lesson.Identity{LearnerID: "u1", Role: lesson.RoleTeacher})
}

func deps(f *fakeBackend) Deps {
	return Deps{Reader: f, Writer: f, Tasks: f}
}

func loadEditor(t *testing.T, f *fakeBackend) *Editor {
	t.Helper()
	e, err := Load(teacherCtx(), deps(f), "L1")
	require.NoError(t, err)
	return e
}

func TestLoadRequiresTeacher(t *testing.T) {
	f := newBackend()

	_, err := Load(context.Background(), deps(f), "L1")
	assert.ErrorIs(t, err, lesson.ErrUnauthorized)

	student := lesson.WithIdentity(context.Background(), lesson.Identity{LearnerID: "s", Role: lesson.RoleStudent})
	_, err = Load(student, deps(f), "L1")
	assert.ErrorIs(t, err, lesson.ErrUnauthorized)
}

func TestLoadFailures(t *testing.T) {
	f := newBackend()
	_, err := Load(teacherCtx(), deps(f), "missing")
	var lerr *lesson.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, lesson.ErrNotFound)

	f = newBackend()
	f.catErr = errors.New("bank down")
	_, err = Load(teacherCtx(), deps(f), "L1")
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "task catalog", lerr.Op)
}

func TestLoadUsesDefaultSubject(t *testing.T) {
	f := newBackend()
	e := loadEditor(t, f)
	assert.Equal(t, DefaultSubject, f.subject)
	assert.Equal(t, "Angles", e.Title())
	assert.Equal(t, 2, e.Len())
	assert.Len(t, e.Catalog(), 2)
}

func TestAddBlockDefaults(t *testing.T) {
	e := loadEditor(t, newBackend())

	k1 := e.AddBlock(block.TagTask)
	k2 := e.AddBlock(block.TagTaskGroup)
	k3 := e.AddBlock(block.TagCheck)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k2, k3)

	blocks := e.Blocks()
	require.Len(t, blocks, 5)
	assert.Equal(t, block.Task{Ref: "T1"}, blocks[2].Content)
	assert.Equal(t, block.TaskGroup{Count: block.DefaultTaskGroupCount}, blocks[3].Content)
	assert.Equal(t, block.Check{}, blocks[4].Content)
}

func TestAddTaskWithEmptyCatalog(t *testing.T) {
	f := newBackend()
	f.catalog = nil
	e := loadEditor(t, f)
	e.AddBlock(block.TagTask)

	err := e.Validate()
	var verr *block.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Index)
}

func TestTaskGroupPartialUpdateAndSubmit(t *testing.T) {
	f := newBackend()
	e := loadEditor(t, f)

	e.AddBlock(block.TagTaskGroup)
	require.NoError(t, e.UpdateBlockContent(2, block.FieldCount, "12"))
	require.NoError(t, e.Submit(teacherCtx()))

	require.Len(t, f.saved, 1)
	got := f.saved[0].Blocks[2]
	assert.Equal(t, "TASK_GROUP", got.Type)
	assert.JSONEq(t, `{"topicId":null,"count":12}`, got.Content)

	require.NoError(t, e.UpdateBlockContent(2, block.FieldTopicID, "2"))
	g := e.Blocks()[2].Content.(block.TaskGroup)
	require.NotNil(t, g.TopicID)
	assert.Equal(t, "2", *g.TopicID)
	assert.Equal(t, 12, g.Count)
}

func TestUpdateWrongField(t *testing.T) {
	e := loadEditor(t, newBackend())
	err := e.UpdateBlockContent(0, block.FieldCount, "3")
	assert.ErrorIs(t, err, block.ErrUnknownField)
	assert.Equal(t, block.Theory{Text: "intro"}, e.Blocks()[0].Content)
}

func TestOutOfRangePanics(t *testing.T) {
	e := loadEditor(t, newBackend())
	assert.Panics(t, func() { _ = e.UpdateBlockContent(2, block.FieldContent, "x") })
	assert.Panics(t, func() { e.RemoveBlock(-1) })
	assert.Panics(t, func() { e.MoveBlock(5, Up) })
}

func TestMoveBlock(t *testing.T) {
	e := loadEditor(t, newBackend())
	e.AddBlock(block.TagCheck)
	before := e.Entries()

	assert.False(t, e.MoveBlock(0, Up))
	assert.False(t, e.MoveBlock(2, Down))
	assert.Equal(t, before, e.Entries())

	assert.True(t, e.MoveBlock(0, Down))
	assert.Equal(t, 1, e.IndexOf(before[0].Key))
	assert.True(t, e.MoveBlock(1, Up))
	assert.Equal(t, before, e.Entries())
}

func TestRemoveBlockKeepsKeys(t *testing.T) {
	e := loadEditor(t, newBackend())
	e.AddBlock(block.TagCheck)
	entries := e.Entries()

	e.RemoveBlock(0)
	after := e.Entries()
	require.Len(t, after, 2)
	assert.Equal(t, entries[1:], after)
	assert.Equal(t, -1, e.IndexOf(entries[0].Key))
}

func TestKeysAreNotReused(t *testing.T) {
	e := loadEditor(t, newBackend())
	k := e.AddBlock(block.TagTheory)
	e.RemoveBlock(e.IndexOf(k))
	assert.NotEqual(t, k, e.AddBlock(block.TagTheory))
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(e *Editor)
		index int
	}{
		{"blank title", func(e *Editor) { e.SetTitle("   ") }, -1},
		{"no blocks", func(e *Editor) { e.RemoveBlock(1); e.RemoveBlock(0) }, -1},
		{"empty task ref", func(e *Editor) { _ = e.UpdateBlockContent(1, block.FieldContent, "") }, 1},
		{"count too large", func(e *Editor) {
			e.AddBlock(block.TagTaskGroup)
			_ = e.UpdateBlockContent(2, block.FieldCount, "21")
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBackend()
			e := loadEditor(t, f)
			tt.edit(e)

			err := e.Submit(teacherCtx())
			var verr *block.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.index, verr.Index)
			assert.Empty(t, f.saved)
		})
	}
}

func TestSubmitWriterFailureLeavesState(t *testing.T) {
	f := newBackend()
	f.saveErr = errors.New("disk full")
	e := loadEditor(t, f)
	e.SetTitle("Angles II")
	before := e.Entries()

	err := e.Submit(teacherCtx())
	assert.ErrorIs(t, err, f.saveErr)
	assert.Equal(t, "Angles II", e.Title())
	assert.Equal(t, before, e.Entries())

	f.saveErr = nil
	require.NoError(t, e.Submit(teacherCtx()))
	assert.Equal(t, "Angles II", f.saved[0].Title)
}

func TestSubmitBusy(t *testing.T) {
	f := newBackend()
	f.block = make(chan struct{})
	f.entered = make(chan struct{})
	e := loadEditor(t, f)

	done := make(chan error)
	go func() { done <- e.Submit(teacherCtx()) }()
	<-f.entered

	assert.ErrorIs(t, e.Submit(teacherCtx()), ErrBusy)
	close(f.block)
	require.NoError(t, <-done)

	f.block = nil
	assert.NoError(t, e.Submit(teacherCtx()))
}

func TestNewLessonCreates(t *testing.T) {
	f := newBackend()
	e, err := New(teacherCtx(), deps(f), "G1")
	require.NoError(t, err)
	assert.Equal(t, "", e.LessonID())

	e.SetTitle("Logs")
	e.AddBlock(block.TagTheory)
	require.NoError(t, e.Submit(teacherCtx()))
	require.Len(t, f.created, 1)
	assert.Equal(t, "L-new", e.LessonID())

	require.NoError(t, e.Submit(teacherCtx()))
	assert.Len(t, f.created, 1)
	assert.Len(t, f.saved, 1)
}
