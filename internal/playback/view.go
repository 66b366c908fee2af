package playback

import (
	"strings"

	"github.com/abhisek/examprep/internal/block"
)

// View is what the current block shows. Only the fields for its Tag are
// set.
type View struct {
	Tag      block.Tag
	Position int
	Total    int

	// THEORY
	Spans []block.Span

	// TASK
	TaskRef    string
	Answer     string
	Result     *Result
	Locked     bool
	CanSubmit  bool
	Submitting bool

	// TASK_GROUP
	Topic string
	Count int

	// CHECK
	Message string

	CanAdvance bool
	Final      bool
}

// Render describes the current block.
func (p *Player) Render() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := block.Visit[View](p.lesson.Blocks[p.cursor].Content, viewer{p: p})
	v.Position = p.cursor + 1
	v.Total = len(p.lesson.Blocks)
	v.Final = p.cursor == len(p.lesson.Blocks)-1
	if p.completing || p.closed || p.state == Completed {
		v.CanAdvance = false
		v.CanSubmit = false
	}
	return v
}

// viewer runs with p.mu held.
type viewer struct{ p *Player }

func (w viewer) VisitTheory(t block.Theory) View {
	return View{Tag: block.TagTheory, Spans: block.FormatTheory(t.Text), CanAdvance: true}
}

func (w viewer) VisitTask(t block.Task) View {
	i := w.p.cursor
	v := View{
		Tag:        block.TagTask,
		TaskRef:    t.Ref,
		Answer:     w.p.answers[i],
		Submitting: w.p.pending == i,
	}
	if r := w.p.results[i]; r != nil {
		res := *r
		v.Result = &res
		v.Locked = true
		v.CanAdvance = true
	}
	v.CanSubmit = !v.Locked && w.p.pending < 0 && strings.TrimSpace(v.Answer) != ""
	return v
}

func (w viewer) VisitTaskGroup(g block.TaskGroup) View {
	return View{Tag: block.TagTaskGroup, Topic: block.TopicName(g.TopicID), Count: g.Count, CanAdvance: true}
}

func (w viewer) VisitCheck(c block.Check) View {
	return View{Tag: block.TagCheck, Message: block.CheckMessage(c), CanAdvance: true}
}
