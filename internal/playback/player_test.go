package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/progress"
)

type fakeReader struct {
	lesson.Reader
	lp  lesson.Progress
	err error
}

func (r *fakeReader) GetWithProgress(context.Context, string) (lesson.Progress, error) {
	return r.lp, r.err
}

type fakeGrader struct {
	attempts []lesson.Attempt
	verdict  lesson.Verdict
	err      error
}

func (g *fakeGrader) Grade(_ context.Context, a lesson.Attempt) (lesson.Verdict, error) {
	g.attempts = append(g.attempts, a)
	return g.verdict, g.err
}

type fakeCompleter struct {
	calls int
	err   error
}

func (c *fakeCompleter) MarkComplete(context.Context, string) error {
	c.calls++
	return c.err
}

type harness struct {
	grader    *fakeGrader
	completer *fakeCompleter
	refreshes []progress.Refresh
	player    *Player
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleLesson() lesson.Progress {
	return lesson.Progress{Lesson: lesson.Lesson{
		ID: "L1", GroupID: "G1", Title: "Angles",
		Blocks: []block.Block{
			{Content: block.Theory{Text: "intro"}},
			{Content: block.Task{Ref: "5"}},
			{Content: block.Check{}},
		},
	}}
}

func open(t *testing.T, lp lesson.Progress) *harness {
	t.Helper()
	h := &harness{
		grader:    &fakeGrader{verdict: lesson.Verdict{Feedback: "Correct", Correct: true}},
		completer: &fakeCompleter{},
	}
	p, err := Open(context.Background(), Deps{
		Reader:    &fakeReader{lp: lp},
		Grader:    h.grader,
		Completer: h.completer,
		Notifier:  progress.NotifierFunc(func(r progress.Refresh) { h.refreshes = append(h.refreshes, r) }),
		Now:       func() time.Time { return fixedNow },
	}, lp.ID)
	require.NoError(t, err)
	h.player = p
	return h
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), Deps{Reader: &fakeReader{err: lesson.ErrNotFound}}, "L1")
	var lerr *lesson.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, lesson.ErrNotFound)

	_, err = Open(context.Background(), Deps{Reader: &fakeReader{lp: lesson.Progress{Lesson: lesson.Lesson{ID: "L1"}}}}, "L1")
	require.ErrorAs(t, err, &lerr)
}

func TestHappyPathScenario(t *testing.T) {
	h := open(t, sampleLesson())
	p := h.player
	ctx := context.Background()

	assert.Equal(t, Viewing, p.State())
	step, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepMoved, step)
	assert.Equal(t, 1, p.Cursor())

	_, err = p.Next(ctx)
	assert.ErrorIs(t, err, ErrGated)

	require.NoError(t, p.SetAnswer("42"))
	require.NoError(t, p.Submit(ctx))
	assert.Equal(t, []lesson.Attempt{{TaskID: "5", Answer: "42"}}, h.grader.attempts)

	res, ok := p.Feedback(1)
	require.True(t, ok)
	assert.Equal(t, Result{Feedback: "Correct", Correct: true, Graded: true}, res)

	step, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepMoved, step)
	assert.Equal(t, 2, p.Cursor())

	step, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepCompleted, step)
	assert.Equal(t, Completed, p.State())
	assert.Equal(t, 1, h.completer.calls)
	assert.Equal(t, []progress.Refresh{{GroupID: "G1", LessonID: "L1", At: fixedNow}}, h.refreshes)

	_, err = p.Next(ctx)
	assert.ErrorIs(t, err, ErrCompleted)
	assert.Equal(t, 1, h.completer.calls)
}

func TestGradingFailureScenario(t *testing.T) {
	h := open(t, sampleLesson())
	h.grader.err = errors.New("oracle down")
	p := h.player
	ctx := context.Background()

	_, err := p.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, p.SetAnswer("42"))
	require.NoError(t, p.Submit(ctx))

	res, ok := p.Feedback(1)
	require.True(t, ok)
	assert.Equal(t, FallbackFeedback, res.Feedback)
	assert.False(t, res.Graded)

	assert.ErrorIs(t, p.SetAnswer("43"), ErrLocked)
	assert.ErrorIs(t, p.Submit(ctx), ErrLocked)
	assert.Len(t, h.grader.attempts, 1)
	assert.True(t, p.Render().Locked)

	step, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepMoved, step)
}

func TestEmptyFeedbackIsAccepted(t *testing.T) {
	h := open(t, sampleLesson())
	h.grader.verdict = lesson.Verdict{}
	p := h.player
	p.Next(context.Background())
	require.NoError(t, p.SetAnswer("x"))
	require.NoError(t, p.Submit(context.Background()))

	res, _ := p.Feedback(1)
	assert.Equal(t, AcceptedFeedback, res.Feedback)
}

func TestUnauthorizedGradingRecordsNothing(t *testing.T) {
	h := open(t, sampleLesson())
	h.grader.err = lesson.ErrUnauthorized
	p := h.player
	p.Next(context.Background())
	require.NoError(t, p.SetAnswer("x"))

	assert.ErrorIs(t, p.Submit(context.Background()), lesson.ErrUnauthorized)
	_, ok := p.Feedback(1)
	assert.False(t, ok)
	assert.Equal(t, Viewing, p.State())
}

func TestSubmitPreconditions(t *testing.T) {
	h := open(t, sampleLesson())
	p := h.player

	_, err := p.BeginSubmit()
	assert.ErrorIs(t, err, ErrNotTask)
	assert.ErrorIs(t, p.SetAnswer("x"), ErrNotTask)

	p.Next(context.Background())
	_, err = p.BeginSubmit()
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	require.NoError(t, p.SetAnswer("  7 "))
	ticket, err := p.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, "7", ticket.Attempt.Answer)
	assert.Equal(t, Submitting, p.State())

	_, err = p.BeginSubmit()
	assert.ErrorIs(t, err, ErrInFlight)
	assert.ErrorIs(t, p.SetAnswer("8"), ErrInFlight)
	_, err = p.Advance()
	assert.ErrorIs(t, err, ErrGated)
	assert.True(t, p.Render().Submitting)
	assert.False(t, p.Render().CanSubmit)

	require.NoError(t, p.FinishSubmit(ticket, lesson.Verdict{Feedback: "No", Correct: false}, nil))
	assert.Equal(t, Viewing, p.State())
}

func TestPrevKeepsAnswers(t *testing.T) {
	h := open(t, sampleLesson())
	p := h.player
	ctx := context.Background()

	assert.False(t, p.Prev())
	p.Next(ctx)
	require.NoError(t, p.SetAnswer("42"))
	require.NoError(t, p.Submit(ctx))
	p.Next(ctx)

	assert.True(t, p.Prev())
	assert.Equal(t, 1, p.Cursor())
	assert.Equal(t, "42", p.Answer(1))
	_, ok := p.Feedback(1)
	assert.True(t, ok)
}

func TestCompletionFailureStaysOnLastBlock(t *testing.T) {
	h := open(t, sampleLesson())
	h.completer.err = errors.New("503")
	p := h.player
	ctx := context.Background()

	p.Next(ctx)
	require.NoError(t, p.SetAnswer("42"))
	require.NoError(t, p.Submit(ctx))
	p.Next(ctx)

	_, err := p.Next(ctx)
	var cerr *CompletionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "L1", cerr.LessonID)
	assert.Equal(t, 2, p.Cursor())
	assert.Equal(t, Viewing, p.State())
	assert.Empty(t, h.refreshes)

	h.completer.err = nil
	step, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepCompleted, step)
	assert.Equal(t, 2, h.completer.calls)
	assert.Len(t, h.refreshes, 1)
}

func TestCompletionInFlight(t *testing.T) {
	lp := sampleLesson()
	lp.Blocks = lp.Blocks[:1]
	h := open(t, lp)
	p := h.player

	step, err := p.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepFinal, step)

	ticket, err := p.BeginComplete()
	require.NoError(t, err)
	_, err = p.BeginComplete()
	assert.ErrorIs(t, err, ErrInFlight)
	_, err = p.Next(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.False(t, p.Render().CanAdvance)

	require.NoError(t, p.FinishComplete(ticket, nil))
	assert.Equal(t, Completed, p.State())
	assert.Equal(t, 0, h.completer.calls)
}

func TestPrevDuringCompletion(t *testing.T) {
	h := open(t, sampleLesson())
	p := h.player
	ctx := context.Background()

	p.Next(ctx)
	require.NoError(t, p.SetAnswer("42"))
	require.NoError(t, p.Submit(ctx))
	p.Next(ctx)
	step, err := p.Advance()
	require.NoError(t, err)
	require.Equal(t, StepFinal, step)

	ticket, err := p.BeginComplete()
	require.NoError(t, err)
	assert.True(t, p.Prev())
	assert.Equal(t, 1, p.Cursor())

	_, err = p.BeginComplete()
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, p.FinishComplete(ticket, nil))
	assert.Equal(t, Completed, p.State())
	assert.True(t, p.Lesson().Completed)
	assert.False(t, p.Prev())
	require.Len(t, h.refreshes, 1)
}

func TestLessonReadsAreSynchronized(t *testing.T) {
	lp := sampleLesson()
	lp.Blocks = lp.Blocks[:1]
	h := open(t, lp)
	p := h.player

	_, err := p.Advance()
	require.NoError(t, err)
	ticket, err := p.BeginComplete()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.FinishComplete(ticket, nil)
	}()
	for i := 0; i < 100; i++ {
		_ = p.Lesson().Completed
	}
	<-done
	assert.True(t, p.Lesson().Completed)
}

func TestClosedSessionDropsResults(t *testing.T) {
	h := open(t, sampleLesson())
	p := h.player
	p.Next(context.Background())
	require.NoError(t, p.SetAnswer("42"))
	ticket, err := p.BeginSubmit()
	require.NoError(t, err)

	p.Close()
	assert.ErrorIs(t, p.FinishSubmit(ticket, lesson.Verdict{Feedback: "late"}, nil), ErrClosed)
	_, ok := p.Feedback(1)
	assert.False(t, ok)
	assert.ErrorIs(t, p.SetAnswer("x"), ErrClosed)
}

func TestTicketFromOtherSessionIgnored(t *testing.T) {
	a := open(t, sampleLesson()).player
	b := open(t, sampleLesson()).player
	a.Next(context.Background())
	b.Next(context.Background())
	require.NoError(t, a.SetAnswer("1"))
	ticket, err := a.BeginSubmit()
	require.NoError(t, err)

	assert.ErrorIs(t, b.FinishSubmit(ticket, lesson.Verdict{Feedback: "x"}, nil), ErrClosed)
	_, ok := b.Feedback(1)
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	topic := "2"
	lp := lesson.Progress{Lesson: lesson.Lesson{
		ID: "L2", Blocks: []block.Block{
			{Content: block.Theory{Text: "a **b**\nc"}},
			{Content: block.TaskGroup{TopicID: &topic, Count: 7}},
			{Content: block.Check{Message: "Done"}},
		},
	}}
	p := open(t, lp).player
	ctx := context.Background()

	v := p.Render()
	assert.Equal(t, block.TagTheory, v.Tag)
	assert.Equal(t, []block.Span{{Text: "a "}, {Text: "b", Bold: true}, {Break: true}, {Text: "c"}}, v.Spans)
	assert.Equal(t, 1, v.Position)
	assert.Equal(t, 3, v.Total)
	assert.True(t, v.CanAdvance)

	p.Next(ctx)
	v = p.Render()
	assert.Equal(t, "Logarithms", v.Topic)
	assert.Equal(t, 7, v.Count)
	assert.True(t, v.CanAdvance)

	p.Next(ctx)
	v = p.Render()
	assert.Equal(t, "Done", v.Message)
	assert.True(t, v.Final)
	pos, total := p.Progress()
	assert.Equal(t, 3, pos)
	assert.Equal(t, 3, total)
}
