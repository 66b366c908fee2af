// Package api is the HTTP client for the lesson service. It implements
// the lesson collaborator interfaces over the remote API and defines the
// JSON bodies shared with internal/server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

// ID is a lesson, group or task identifier. The platform sends ids as
// JSON numbers or strings; both decode to the decimal string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// LessonBody is a lesson as served by GET /lessons/{id}. Completed is
// only present on the with-progress route.
type LessonBody struct {
	ID        ID           `json:"id"`
	GroupID   ID           `json:"groupId"`
	Title     string       `json:"title"`
	Blocks    []block.Wire `json:"blocks"`
	Completed *bool        `json:"completed,omitempty"`
}

// SummaryBody is a row of GET /lessons/group/{groupId}.
type SummaryBody struct {
	ID         ID     `json:"id"`
	GroupID    ID     `json:"groupId"`
	Title      string `json:"title"`
	BlockCount int    `json:"blockCount"`
	Completed  bool   `json:"completed"`
}

// DraftBody is the body of PUT /lessons/{id} and POST /lessons.
type DraftBody struct {
	GroupID ID           `json:"groupId,omitempty"`
	Title   string       `json:"title"`
	Blocks  []block.Wire `json:"blocks"`
}

type CreatedBody struct {
	ID ID `json:"id"`
}

// TaskBody is a task-bank entry without its answer key.
type TaskBody struct {
	ID         ID     `json:"id"`
	Subject    string `json:"subject"`
	TaskNumber int    `json:"taskNumber"`
	Text       string `json:"text"`
}

type AttemptBody struct {
	TaskID     string `json:"taskId"`
	UserAnswer string `json:"userAnswer"`
}

type FeedbackBody struct {
	AIFeedback string `json:"aiFeedback"`
	Correct    bool   `json:"correct"`
}

// ErrorBody is the body of every non-2xx response. Index is set on 422
// responses that concern a specific block.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Index   *int   `json:"index,omitempty"`
}

// NewLessonBody converts a lesson to its response body.
func NewLessonBody(l lesson.Lesson) LessonBody {
	return LessonBody{
		ID:      ID(l.ID),
		GroupID: ID(l.GroupID),
		Title:   l.Title,
		Blocks:  block.EncodeAll(l.Blocks),
	}
}

func NewSummaryBodies(list []lesson.Summary) []SummaryBody {
	out := make([]SummaryBody, len(list))
	for i, s := range list {
		out[i] = SummaryBody{
			ID:         ID(s.ID),
			GroupID:    ID(s.GroupID),
			Title:      s.Title,
			BlockCount: s.BlockCount,
			Completed:  s.Completed,
		}
	}
	return out
}

func NewTaskBodies(c lesson.Catalog) []TaskBody {
	out := make([]TaskBody, len(c))
	for i, t := range c {
		out[i] = TaskBody{ID: ID(t.ID), Subject: t.Subject, TaskNumber: t.TaskNumber, Text: t.Text}
	}
	return out
}
