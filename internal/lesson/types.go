// Package lesson holds the lesson aggregate and the contracts of the
// collaborators the authoring and playback engines call: lesson storage,
// the task bank, the grading oracle and the completion record.
package lesson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/block"
)

// Lesson is an ordered sequence of blocks with a title. Order is the
// lesson flow; there is no separate position field.
type Lesson struct {
	ID      string
	GroupID string
	Title   string
	Blocks  []block.Block
}

// Progress is a lesson as fetched for a learner, with that learner's
// completion flag. Only playback completion ever sets Completed.
type Progress struct {
	Lesson
	Completed bool
}

// Summary is a row of a group's lesson list.
type Summary struct {
	ID         string
	GroupID    string
	Title      string
	BlockCount int
	Completed  bool
}

// Draft is the persisted shape of a lesson edit: title plus blocks in
// array order, with no authoring-session keys.
type Draft struct {
	Title  string       `json:"title" yaml:"title"`
	Blocks []block.Wire `json:"blocks" yaml:"blocks"`
}

// FromWire builds a Lesson from its persisted parts, decoding block
// content at the boundary.
func FromWire(id, groupID, title string, wires []block.Wire) (Lesson, error) {
	blocks, err := block.DecodeAll(wires)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson %s: %w", id, err)
	}
	return Lesson{ID: id, GroupID: groupID, Title: title, Blocks: blocks}, nil
}

// Task is a task-bank entry. Answer is the answer key; it is used by
// grading only and never shown to learners.
type Task struct {
	ID         string
	Subject    string
	TaskNumber int
	Text       string
	Answer     string
}

// Catalog is an ordered task-bank listing.
type Catalog []Task

// First returns the first task, or false when the catalog is empty.
func (c Catalog) First() (Task, bool) {
	if len(c) == 0 {
		return Task{}, false
	}
	return c[0], true
}

// FirstRef returns the id of the first task, or "".
func (c Catalog) FirstRef() string {
	t, _ := c.First()
	return t.ID
}

// Find returns the task with the given id.
func (c Catalog) Find(id string) (Task, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Attempt is a learner's answer to a task.
type Attempt struct {
	TaskID string
	Answer string
}

// Verdict is the grading oracle's response.
type Verdict struct {
	Feedback string
	Correct  bool
}

// Validate decodes and checks a draft received from outside an editor.
// Errors are *block.ValidationError, with Index set for block errors.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &block.ValidationError{Index: -1, Reason: "lesson title is required"}
	}
	if len(d.Blocks) == 0 {
		return &block.ValidationError{Index: -1, Reason: "lesson needs at least one block"}
	}
	for i, w := range d.Blocks {
		b, err := block.Decode(w)
		if err == nil {
			err = block.Validate(b)
		}
		if err != nil {
			var verr *block.ValidationError
			if errors.As(err, &verr) {
				return &block.ValidationError{Index: i, Reason: verr.Reason}
			}
			return &block.ValidationError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}
