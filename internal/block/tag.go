package block

import (
	"errors"
	"fmt"
)

// Tag identifies the kind of a lesson block.
type Tag string

const (
	TagTheory    Tag = "THEORY"
	TagTask      Tag = "TASK"
	TagTaskGroup Tag = "TASK_GROUP"
	TagCheck     Tag = "CHECK"
)

// ErrUnknownTag is returned when a block tag is not one of the four known kinds.
var ErrUnknownTag = errors.New("unknown block tag")

// Tags lists every tag in authoring-menu order.
var Tags = []Tag{TagTheory, TagTask, TagTaskGroup, TagCheck}

// ParseTag converts a wire string into a Tag.
func ParseTag(s string) (Tag, error) {
	switch t := Tag(s); t {
	case TagTheory, TagTask, TagTaskGroup, TagCheck:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTag, s)
}

// Label returns a short human label for the tag.
func (t Tag) Label() string {
	switch t {
	case TagTheory:
		return "Theory"
	case TagTask:
		return "Task"
	case TagTaskGroup:
		return "Task group"
	case TagCheck:
		return "Check"
	}
	panic(fmt.Sprintf("block: unhandled tag %q", string(t)))
}
