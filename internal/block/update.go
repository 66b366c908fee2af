package block

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field addresses the part of a block's content an edit changes.
type Field string

const (
	// FieldContent is the whole payload of THEORY, TASK and CHECK blocks.
	FieldContent Field = "content"
	FieldTopicID Field = "topicId"
	FieldCount   Field = "count"
)

// ErrUnknownField is returned when an edit addresses a field the block
// kind does not have.
var ErrUnknownField = errors.New("unknown block field")

// Update returns c with field set to value. TASK_GROUP edits touch only
// the addressed sub-field; the sibling keeps its current value.
func Update(c Content, field Field, value string) (Content, error) {
	switch c := c.(type) {
	case Theory:
		if field != FieldContent {
			return nil, fieldErr(c, field)
		}
		c.Text = value
		return c, nil
	case Task:
		if field != FieldContent {
			return nil, fieldErr(c, field)
		}
		c.Ref = strings.TrimSpace(value)
		return c, nil
	case TaskGroup:
		return c.With(field, value)
	case Check:
		if field != FieldContent {
			return nil, fieldErr(c, field)
		}
		c.Message = value
		return c, nil
	}
	panic(fmt.Sprintf("block: unhandled content %T", c))
}

// With applies a partial update to a task group. An empty topic clears
// it to "any topic". The count is stored even when out of range so the
// author can see it; Validate rejects it at save time.
func (g TaskGroup) With(field Field, value string) (Content, error) {
	switch field {
	case FieldTopicID:
		value = strings.TrimSpace(value)
		if value == "" {
			g.TopicID = nil
		} else {
			g.TopicID = &value
		}
		return g, nil
	case FieldCount:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, invalid("task group count %q is not a whole number", value)
		}
		g.Count = n
		return g, nil
	}
	return nil, fieldErr(g, field)
}

func fieldErr(c Content, field Field) error {
	return fmt.Errorf("%w: %s has no %q", ErrUnknownField, c.Tag(), string(field))
}

// Topic is a practice-drill topic a TASK_GROUP can target.
type Topic struct {
	ID   string
	Name string
}

// Topics lists the drill topics offered to authors.
var Topics = []Topic{
	{ID: "1", Name: "Trigonometry"},
	{ID: "2", Name: "Logarithms"},
	{ID: "3", Name: "Exponential equations"},
}

// TopicName returns the display name of a topic id, or "Any topic".
func TopicName(id *string) string {
	if id == nil {
		return "Any topic"
	}
	for _, t := range Topics {
		if t.ID == *id {
			return t.Name
		}
	}
	return "Topic " + *id
}
