package block

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseTag(t *testing.T) {
	for _, tag := range Tags {
		got, err := ParseTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}

	_, err := ParseTag("VIDEO")
	assert.True(t, errors.Is(err, ErrUnknownTag))
}

func TestDefault(t *testing.T) {
	assert.Equal(t, Theory{}, Default(TagTheory, "7"))
	assert.Equal(t, Task{Ref: "7"}, Default(TagTask, "7"))
	assert.Equal(t, Task{}, Default(TagTask, ""))
	assert.Equal(t, TaskGroup{Count: 5}, Default(TagTaskGroup, "7"))
	assert.Equal(t, Check{}, Default(TagCheck, "7"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		wantErr bool
	}{
		{"empty theory", Theory{}, false},
		{"empty check", Check{}, false},
		{"task with ref", Task{Ref: "5"}, false},
		{"task without ref", Task{}, true},
		{"task blank ref", Task{Ref: "  "}, true},
		{"group min", TaskGroup{Count: 1}, false},
		{"group max", TaskGroup{TopicID: strPtr("2"), Count: 20}, false},
		{"group zero", TaskGroup{Count: 0}, true},
		{"group over", TaskGroup{Count: 21}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Block{Content: tt.content})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, -1, verr.Index)
		})
	}
}

func TestTaskGroupPartialUpdate(t *testing.T) {
	g := Default(TagTaskGroup, "")

	updated, err := Update(g, FieldCount, "12")
	require.NoError(t, err)
	assert.Equal(t, TaskGroup{TopicID: nil, Count: 12}, updated)

	updated, err = Update(updated, FieldTopicID, "3")
	require.NoError(t, err)
	assert.Equal(t, TaskGroup{TopicID: strPtr("3"), Count: 12}, updated)

	updated, err = Update(updated, FieldTopicID, "")
	require.NoError(t, err)
	assert.Equal(t, TaskGroup{Count: 12}, updated)
}

func TestTaskGroupUpdateRejectsNonInteger(t *testing.T) {
	g := TaskGroup{TopicID: strPtr("1"), Count: 4}
	_, err := g.With(FieldCount, "many")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTaskGroupUpdateKeepsOutOfRangeForValidation(t *testing.T) {
	updated, err := Update(TaskGroup{Count: 5}, FieldCount, "25")
	require.NoError(t, err)
	assert.Equal(t, 25, updated.(TaskGroup).Count)
	assert.Error(t, Validate(Block{Content: updated}))
}

func TestUpdateUnknownField(t *testing.T) {
	_, err := Update(Theory{}, FieldCount, "3")
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = Update(TaskGroup{Count: 5}, FieldContent, "x")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestUpdateTaskTrimsRef(t *testing.T) {
	updated, err := Update(Task{}, FieldContent, " 42 ")
	require.NoError(t, err)
	assert.Equal(t, Task{Ref: "42"}, updated)
}

type tagNamer struct{}

func (tagNamer) VisitTheory(Theory) string       { return "theory" }
func (tagNamer) VisitTask(Task) string           { return "task" }
func (tagNamer) VisitTaskGroup(TaskGroup) string { return "group" }
func (tagNamer) VisitCheck(Check) string         { return "check" }

func TestVisit(t *testing.T) {
	assert.Equal(t, "theory", Visit[string](Theory{}, tagNamer{}))
	assert.Equal(t, "task", Visit[string](Task{}, tagNamer{}))
	assert.Equal(t, "group", Visit[string](TaskGroup{}, tagNamer{}))
	assert.Equal(t, "check", Visit[string](Check{}, tagNamer{}))
	assert.Panics(t, func() { Visit[string](nil, tagNamer{}) })
}

func TestTopicName(t *testing.T) {
	assert.Equal(t, "Any topic", TopicName(nil))
	assert.Equal(t, "Logarithms", TopicName(strPtr("2")))
	assert.Equal(t, "Topic 9", TopicName(strPtr("9")))
}
