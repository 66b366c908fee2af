package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Wire is the persisted form of a block: its tag and a string payload.
// TASK_GROUP payloads are a serialized JSON record.
type Wire struct {
	Type    string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
}

// Encode converts typed content to its wire form.
func Encode(b Block) Wire {
	return Wire{Type: string(b.Tag()), Content: Visit[string](b.Content, encoder{})}
}

type encoder struct{}

func (encoder) VisitTheory(t Theory) string { return t.Text }
func (encoder) VisitTask(t Task) string     { return t.Ref }
func (encoder) VisitCheck(c Check) string   { return c.Message }

func (encoder) VisitTaskGroup(g TaskGroup) string {
	raw, err := json.Marshal(taskGroupRecord{TopicID: g.TopicID, Count: g.Count})
	if err != nil {
		panic(fmt.Sprintf("block: encode task group: %v", err))
	}
	return string(raw)
}

type taskGroupRecord struct {
	TopicID *string `json:"topicId"`
	Count   int     `json:"count"`
}

// EncodeAll encodes blocks in order.
func EncodeAll(blocks []Block) []Wire {
	out := make([]Wire, len(blocks))
	for i, b := range blocks {
		out[i] = Encode(b)
	}
	return out
}

// Decode parses a wire block into typed content. TASK_GROUP payloads are
// decoded here, once, so engines never handle the serialized form.
func Decode(w Wire) (Block, error) {
	tag, err := ParseTag(w.Type)
	if err != nil {
		return Block{}, err
	}
	switch tag {
	case TagTheory:
		return Block{Content: Theory{Text: w.Content}}, nil
	case TagTask:
		return Block{Content: Task{Ref: strings.TrimSpace(w.Content)}}, nil
	case TagTaskGroup:
		g, err := decodeTaskGroup(w.Content)
		if err != nil {
			return Block{}, err
		}
		return Block{Content: g}, nil
	case TagCheck:
		return Block{Content: Check{Message: w.Content}}, nil
	}
	panic(fmt.Sprintf("block: unhandled tag %q", string(tag)))
}

// DecodeAll decodes wire blocks in order. The error names the first
// block that failed.
func DecodeAll(wires []Wire) ([]Block, error) {
	out := make([]Block, len(wires))
	for i, w := range wires {
		b, err := Decode(w)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		out[i] = b
	}
	return out, nil
}

// taskGroupSchema accepts the shapes authoring clients have written over
// time: ids and counts as numbers or numeric strings.
var taskGroupSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topicId": map[string]any{"type": []any{"string", "integer", "null"}},
		"count": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "integer"},
				map[string]any{"type": "string", "pattern": `^\s*-?[0-9]+\s*$`},
			},
		},
	},
}

var (
	compileOnce     sync.Once
	compiledGroup   *jsonschema.Schema
	compileGroupErr error
)

func taskGroupValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://task-group.json"
		if err := c.AddResource(url, taskGroupSchema); err != nil {
			compileGroupErr = fmt.Errorf("add task group schema: %w", err)
			return
		}
		compiledGroup, compileGroupErr = c.Compile(url)
	})
	return compiledGroup, compileGroupErr
}

func decodeTaskGroup(content string) (TaskGroup, error) {
	g := TaskGroup{Count: DefaultTaskGroupCount}
	if strings.TrimSpace(content) == "" {
		return g, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return TaskGroup{}, invalid("task group content is not JSON: %v", err)
	}

	schema, err := taskGroupValidator()
	if err != nil {
		return TaskGroup{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return TaskGroup{}, invalid("task group content: %v", err)
	}

	fields := doc.(map[string]any)
	switch v := fields["topicId"].(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			g.TopicID = &v
		}
	case json.Number:
		id := v.String()
		g.TopicID = &id
	}

	switch v := fields["count"].(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return TaskGroup{}, invalid("task group count %s is not a whole number", v)
		}
		g.Count = n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return TaskGroup{}, invalid("task group count %q is not a whole number", v)
		}
		g.Count = n
	}

	if g.Count < MinTaskGroupCount || g.Count > MaxTaskGroupCount {
		return TaskGroup{}, invalid("task group count %d is outside [%d, %d]", g.Count, MinTaskGroupCount, MaxTaskGroupCount)
	}
	return g, nil
}
