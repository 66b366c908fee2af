// Package editor is the teacher-facing lesson authoring screen.
package editor

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/authoring"
	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/progress"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

type (
	loadedMsg struct {
		editor *authoring.Editor
		err    error
	}

	savedMsg struct {
		err error
	}
)

type mode int

const (
	browsing mode = iota
	editingTitle
	editingField
	pickingTag
	pickingTask
	pickingTopic
)

// Screen edits one lesson, new or existing.
type Screen struct {
	env      screens.Env
	lessonID string

	ed       *authoring.Editor
	selected int
	mode     mode
	field    block.Field
	input    components.TextInput
	picker   components.Picker

	saving bool
	status string
	errMsg string
	fatal  string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New opens lessonID for editing, or a blank lesson in the env's group
// when lessonID is empty.
func New(env screens.Env, lessonID string) *Screen {
	return &Screen{env: env, lessonID: lessonID}
}

func (s *Screen) deps() authoring.Deps {
	return authoring.Deps{
		Reader:  s.env.Reader,
		Writer:  s.env.Writer,
		Tasks:   s.env.Tasks,
		Subject: s.env.Subject,
	}
}

func (s *Screen) Init() tea.Cmd {
	env, deps, id := s.env, s.deps(), s.lessonID
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		if id == "" {
			ed, err := authoring.New(ctx, deps, env.GroupID)
			return loadedMsg{editor: ed, err: err}
		}
		ed, err := authoring.Load(ctx, deps, id)
		return loadedMsg{editor: ed, err: err}
	}
}

func (s *Screen) Title() string {
	if s.ed == nil || s.ed.LessonID() == "" {
		return "New lesson"
	}
	return "Edit · " + s.ed.Title()
}

// CapturingInput keeps Esc inside the screen while a field or picker is
// open.
func (s *Screen) CapturingInput() bool {
	return s.mode != browsing
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.fatal = msg.err.Error()
			return s, nil
		}
		s.ed = msg.editor
		return s, nil

	case savedMsg:
		return s.handleSaved(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.mode == editingTitle || s.mode == editingField {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.fatal != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.ed == nil {
		return s, nil
	}

	switch s.mode {
	case editingTitle, editingField:
		return s.handleInputKey(msg)
	case pickingTag, pickingTask, pickingTopic:
		return s.handlePickerKey(msg)
	}

	s.status = ""
	n := s.ed.Len()
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < n-1 {
			s.selected++
		}
	case "shift+up", "K":
		if n > 0 && s.ed.MoveBlock(s.selected, authoring.Up) {
			s.selected--
		}
	case "shift+down", "J":
		if n > 0 && s.ed.MoveBlock(s.selected, authoring.Down) {
			s.selected++
		}
	case "a":
		labels := make([]string, len(block.Tags))
		for i, t := range block.Tags {
			labels[i] = t.Label()
		}
		s.picker = components.NewPicker("Add block", labels, 0)
		s.mode = pickingTag
	case "d", "delete":
		if n > 0 {
			s.ed.RemoveBlock(s.selected)
			if s.selected >= s.ed.Len() && s.selected > 0 {
				s.selected--
			}
		}
	case "t":
		s.input = components.NewTextInput("Lesson title", s.ed.Title(), false, 120)
		s.mode = editingTitle
		return s, s.input.Init()
	case "enter":
		if n > 0 {
			return s.editSelected(block.FieldContent)
		}
	case "o":
		if n > 0 {
			return s.editSelected(block.FieldTopicID)
		}
	case "ctrl+s":
		return s.save()
	}
	return s, nil
}

// editSelected opens the editor for one field of the selected block.
func (s *Screen) editSelected(field block.Field) (screen.Screen, tea.Cmd) {
	entries := s.ed.Entries()
	b := entries[s.selected].Block
	s.field = field

	switch c := b.Content.(type) {
	case block.Theory:
		return s.openInput("Theory text (\\n for a new line, **bold**)", escapeNewlines(c.Text), false)
	case block.Check:
		return s.openInput("Check message (blank for default)", c.Message, false)
	case block.Task:
		catalog := s.ed.Catalog()
		if len(catalog) == 0 {
			s.status = "The task bank is empty."
			return s, nil
		}
		labels := make([]string, len(catalog))
		current := 0
		for i, t := range catalog {
			labels[i] = fmt.Sprintf("#%d %s", t.TaskNumber, t.Text)
			if t.ID == c.Ref {
				current = i
			}
		}
		s.picker = components.NewPicker("Choose a task", labels, current)
		s.mode = pickingTask
	case block.TaskGroup:
		if field == block.FieldTopicID {
			labels := []string{block.TopicName(nil)}
			current := 0
			for i, t := range block.Topics {
				labels = append(labels, t.Name)
				if c.TopicID != nil && *c.TopicID == t.ID {
					current = i + 1
				}
			}
			s.picker = components.NewPicker("Drill topic", labels, current)
			s.mode = pickingTopic
			return s, nil
		}
		s.field = block.FieldCount
		return s.openInput(fmt.Sprintf("Task count (%d-%d)", block.MinTaskGroupCount, block.MaxTaskGroupCount),
			fmt.Sprint(c.Count), true)
	}
	return s, nil
}

func (s *Screen) openInput(placeholder, value string, numeric bool) (screen.Screen, tea.Cmd) {
	s.input = components.NewTextInput(placeholder, value, numeric, 0)
	s.mode = editingField
	return s, s.input.Init()
}

func (s *Screen) handleInputKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = browsing
		return s, nil
	case "enter":
		s.commitInput()
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) commitInput() {
	value := s.input.Value()
	mode := s.mode
	s.mode = browsing
	if mode == editingTitle {
		s.ed.SetTitle(value)
		return
	}
	if s.field == block.FieldContent {
		if _, isTheory := s.ed.Entries()[s.selected].Block.Content.(block.Theory); isTheory {
			value = unescapeNewlines(value)
		}
	}
	if err := s.ed.UpdateBlockContent(s.selected, s.field, value); err != nil {
		s.errMsg = err.Error()
	}
}

func (s *Screen) handlePickerKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		s.mode = browsing
		return s, nil
	}
	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if !s.picker.Done() {
		return s, cmd
	}

	chosen := s.picker.Chosen
	mode := s.mode
	s.mode = browsing
	switch mode {
	case pickingTag:
		key := s.ed.AddBlock(block.Tags[chosen])
		s.selected = s.ed.IndexOf(key)
	case pickingTask:
		ref := s.ed.Catalog()[chosen].ID
		if err := s.ed.UpdateBlockContent(s.selected, block.FieldContent, ref); err != nil {
			s.errMsg = err.Error()
		}
	case pickingTopic:
		topic := ""
		if chosen > 0 {
			topic = block.Topics[chosen-1].ID
		}
		if err := s.ed.UpdateBlockContent(s.selected, block.FieldTopicID, topic); err != nil {
			s.errMsg = err.Error()
		}
	}
	return s, cmd
}

func (s *Screen) save() (screen.Screen, tea.Cmd) {
	if err := s.ed.Validate(); err != nil {
		s.errMsg = err.Error()
		s.selectInvalid(err)
		return s, nil
	}
	s.errMsg = ""
	s.saving = true
	s.status = "Saving..."

	env, ed := s.env, s.ed
	return s, func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		return savedMsg{err: ed.Submit(ctx)}
	}
}

func (s *Screen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	switch {
	case errors.Is(msg.err, authoring.ErrBusy):
		s.status = "A save is already in progress."
	case msg.err != nil:
		s.status = ""
		s.errMsg = msg.err.Error()
		s.selectInvalid(msg.err)
	default:
		s.status = "Saved."
		s.errMsg = ""
		if s.env.Tracker != nil {
			s.env.Tracker.Notify(progress.Refresh{GroupID: s.ed.GroupID(), LessonID: s.ed.LessonID()})
		}
		return s, func() tea.Msg {
			return screens.RefreshMsg{Refresh: progress.Refresh{GroupID: s.ed.GroupID(), LessonID: s.ed.LessonID()}}
		}
	}
	return s, nil
}

func (s *Screen) selectInvalid(err error) {
	var verr *block.ValidationError
	if errors.As(err, &verr) && verr.Index >= 0 && verr.Index < s.ed.Len() {
		s.selected = verr.Index
	}
}

func escapeNewlines(s string) string   { return strings.ReplaceAll(s, "\n", `\n`) }
func unescapeNewlines(s string) string { return strings.ReplaceAll(s, `\n`, "\n") }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case editingTitle, editingField:
		return []layout.KeyHint{{Key: "Enter", Description: "Apply"}, {Key: "Esc", Description: "Cancel"}}
	case pickingTag, pickingTask, pickingTopic:
		return []layout.KeyHint{{Key: "↑↓", Description: "Choose"}, {Key: "Enter", Description: "Select"}, {Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "a", Description: "Add"},
		{Key: "Enter", Description: "Edit"},
		{Key: "d", Description: "Delete"},
		{Key: "J/K", Description: "Move"},
		{Key: "t", Description: "Title"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}
