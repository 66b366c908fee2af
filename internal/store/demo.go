package store

import (
	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

// DemoGroupID owns the lesson created by Seed.
const DemoGroupID = "demo"

var demoLesson = lesson.Draft{
	Title: "Exponential equations",
	Blocks: block.EncodeAll([]block.Block{
		{Content: block.Theory{Text: "If **a^x = a^y** with a > 0 and a ≠ 1, then **x = y**.\nRewrite both sides with the same base first."}},
		{Content: block.Task{Ref: "3"}},
		{Content: block.Task{Ref: "5"}},
		{Content: block.TaskGroup{TopicID: strPtr("3"), Count: block.DefaultTaskGroupCount}},
		{Content: block.Check{}},
	}),
}

func strPtr(s string) *string { return &s }
