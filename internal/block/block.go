// Package block defines the typed content model for lesson blocks: the
// four block kinds, their validation rules, and the conversion between
// typed content and the string form used on the wire.
package block

import "fmt"

// Content is the tag-specific payload of a block. The set of
// implementations is closed: Theory, Task, TaskGroup and Check.
type Content interface {
	Tag() Tag
	sealed()
}

// Theory is free-form lesson text with newline and **bold** markup.
type Theory struct {
	Text string
}

// Task references an entry in the task bank.
type Task struct {
	Ref string
}

// TaskGroup asks for a practice drill of Count tasks on a topic.
// A nil TopicID means "any topic".
type TaskGroup struct {
	TopicID *string
	Count   int
}

// Check closes a section with an optional message.
type Check struct {
	Message string
}

func (Theory) Tag() Tag    { return TagTheory }
func (Task) Tag() Tag      { return TagTask }
func (TaskGroup) Tag() Tag { return TagTaskGroup }
func (Check) Tag() Tag     { return TagCheck }

func (Theory) sealed()    {}
func (Task) sealed()      {}
func (TaskGroup) sealed() {}
func (Check) sealed()     {}

// Block is one unit of lesson content.
type Block struct {
	Content Content
}

// Tag returns the block's kind.
func (b Block) Tag() Tag {
	return b.Content.Tag()
}

// Visitor handles each block kind. Implementations must cover every
// kind, so adding a kind breaks every consumer at compile time.
type Visitor[T any] interface {
	VisitTheory(Theory) T
	VisitTask(Task) T
	VisitTaskGroup(TaskGroup) T
	VisitCheck(Check) T
}

// Visit dispatches c to the matching Visitor method.
func Visit[T any](c Content, v Visitor[T]) T {
	switch c := c.(type) {
	case Theory:
		return v.VisitTheory(c)
	case Task:
		return v.VisitTask(c)
	case TaskGroup:
		return v.VisitTaskGroup(c)
	case Check:
		return v.VisitCheck(c)
	}
	panic(fmt.Sprintf("block: unhandled content %T", c))
}

// DefaultTaskGroupCount is the drill size of a freshly added TASK_GROUP.
const DefaultTaskGroupCount = 5

// Default returns the content a newly added block of kind t starts with.
// firstTaskRef is the id of the first catalog entry, or "" when the
// catalog is empty.
func Default(t Tag, firstTaskRef string) Content {
	switch t {
	case TagTheory:
		return Theory{}
	case TagTask:
		return Task{Ref: firstTaskRef}
	case TagTaskGroup:
		return TaskGroup{Count: DefaultTaskGroupCount}
	case TagCheck:
		return Check{}
	}
	panic(fmt.Sprintf("block: unhandled tag %q", string(t)))
}
