// Package playback runs a learner through a lesson one block at a time.
//
// A Player is driven by UI events on a single goroutine but its grading
// and completion calls may finish on others, so every result carries a
// ticket tying it to the session that started it.
package playback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/progress"
)

const (
	// FallbackFeedback is recorded when grading fails. It still locks the
	// task.
	FallbackFeedback = "Could not check your answer. Please try again later."

	// AcceptedFeedback is recorded when the grader returns no text.
	AcceptedFeedback = "Answer accepted"
)

// State is the player's coarse state.
type State int

const (
	Viewing State = iota
	Submitting
	Completed
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Step is the outcome of a successful Advance or Next.
type Step int

const (
	// StepMoved means the cursor moved to the next block.
	StepMoved Step = iota
	// StepFinal means Next was pressed on the last block and the lesson
	// must be completed.
	StepFinal
	// StepCompleted means the lesson was completed.
	StepCompleted
)

// Deps are the collaborators a Player talks to.
type Deps struct {
	Reader    lesson.Reader
	Grader    lesson.Grader
	Completer lesson.Completer
	Notifier  progress.Notifier
	Log       *logger.Logger
	Now       func() time.Time
}

// Result is the recorded outcome of grading one task.
type Result struct {
	Feedback string
	Correct  bool
	// Graded is false when Feedback is the fallback text.
	Graded bool
}

// Player is one play-through of a lesson. It is disposable: Close it when
// the learner leaves and open a new one to play again.
type Player struct {
	deps Deps
	id   string
	log  *logger.Logger

	mu         sync.Mutex
	lesson     lesson.Progress
	cursor     int
	answers    []string
	results    []*Result
	pending    int
	completing bool
	state      State
	closed     bool
}

// Open fetches the lesson with the caller's progress and returns a player
// on the first block.
func Open(ctx context.Context, deps Deps, lessonID string) (*Player, error) {
	lp, err := deps.Reader.GetWithProgress(ctx, lessonID)
	if err != nil {
		return nil, &lesson.LoadError{Op: "lesson " + lessonID, Err: err}
	}
	if len(lp.Blocks) == 0 {
		return nil, &lesson.LoadError{Op: "lesson " + lessonID, Err: errors.New("lesson has no blocks")}
	}

	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	id := uuid.NewString()
	n := len(lp.Blocks)
	return &Player{
		deps:    deps,
		id:      id,
		log:     log.With("session", id, "lesson", lp.ID),
		lesson:  lp,
		answers: make([]string, n),
		results: make([]*Result, n),
		pending: -1,
	}, nil
}

// ID identifies this play-through in logs.
func (p *Player) ID() string { return p.id }

// Lesson returns the lesson being played.
func (p *Player) Lesson() lesson.Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lesson
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Player) stateLocked() State {
	if p.state == Completed {
		return Completed
	}
	if p.pending >= 0 {
		return Submitting
	}
	return Viewing
}

// Cursor returns the index of the current block.
func (p *Player) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Progress returns the 1-based position of the current block and the
// block count.
func (p *Player) Progress() (position, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor + 1, len(p.lesson.Blocks)
}

// Current returns the block under the cursor.
func (p *Player) Current() block.Block {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lesson.Blocks[p.cursor]
}

// Answer returns the answer typed for block i.
func (p *Player) Answer(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.answers[i]
}

// Feedback returns the recorded result for block i, if any.
func (p *Player) Feedback(i int) (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r := p.results[i]; r != nil {
		return *r, true
	}
	return Result{}, false
}

func (p *Player) checkOpenLocked() error {
	if p.closed {
		return ErrClosed
	}
	if p.state == Completed {
		return ErrCompleted
	}
	return nil
}

func (p *Player) currentTaskLocked() (block.Task, error) {
	t, ok := p.lesson.Blocks[p.cursor].Content.(block.Task)
	if !ok {
		return block.Task{}, ErrNotTask
	}
	return t, nil
}

// SetAnswer records the answer for the current task.
func (p *Player) SetAnswer(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkOpenLocked(); err != nil {
		return err
	}
	if _, err := p.currentTaskLocked(); err != nil {
		return err
	}
	if p.pending == p.cursor {
		return ErrInFlight
	}
	if p.results[p.cursor] != nil {
		return ErrLocked
	}
	p.answers[p.cursor] = text
	return nil
}

// Ticket ties an asynchronous result to the player and block that
// started it.
type Ticket struct {
	player  *Player
	Index   int
	Attempt lesson.Attempt
}

// BeginSubmit starts grading the current task. The caller grades
// Ticket.Attempt and hands the outcome to FinishSubmit.
func (p *Player) BeginSubmit() (Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkOpenLocked(); err != nil {
		return Ticket{}, err
	}
	task, err := p.currentTaskLocked()
	if err != nil {
		return Ticket{}, err
	}
	if p.pending >= 0 {
		return Ticket{}, ErrInFlight
	}
	if p.results[p.cursor] != nil {
		return Ticket{}, ErrLocked
	}
	answer := strings.TrimSpace(p.answers[p.cursor])
	if answer == "" {
		return Ticket{}, ErrEmptyAnswer
	}

	p.pending = p.cursor
	return Ticket{
		player:  p,
		Index:   p.cursor,
		Attempt: lesson.Attempt{TaskID: task.Ref, Answer: answer},
	}, nil
}

// FinishSubmit records a grading outcome. A grading error records
// FallbackFeedback and locks the task anyway. lesson.ErrUnauthorized
// records nothing and is returned.
func (p *Player) FinishSubmit(t Ticket, v lesson.Verdict, gradeErr error) error {
	if t.player != p {
		return ErrClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.log.Debug("dropping grading result for closed session", "block", t.Index)
		return ErrClosed
	}
	if p.pending != t.Index {
		return ErrClosed
	}
	p.pending = -1

	switch {
	case errors.Is(gradeErr, lesson.ErrUnauthorized):
		return gradeErr
	case gradeErr != nil:
		p.log.Warn("grading failed", "block", t.Index, "task", t.Attempt.TaskID, "error", gradeErr)
		p.results[t.Index] = &Result{Feedback: FallbackFeedback}
	default:
		fb := v.Feedback
		if strings.TrimSpace(fb) == "" {
			fb = AcceptedFeedback
		}
		p.results[t.Index] = &Result{Feedback: fb, Correct: v.Correct, Graded: true}
		p.log.Info("task graded", "block", t.Index, "task", t.Attempt.TaskID, "correct", v.Correct)
	}
	return nil
}

// Submit grades the current task and waits for the result.
func (p *Player) Submit(ctx context.Context) error {
	t, err := p.BeginSubmit()
	if err != nil {
		return err
	}
	v, gradeErr := p.deps.Grader.Grade(ctx, t.Attempt)
	return p.FinishSubmit(t, v, gradeErr)
}

// Advance moves past the current block without completing the lesson.
// On the last block it returns StepFinal and leaves the cursor alone.
func (p *Player) Advance() (Step, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkOpenLocked(); err != nil {
		return 0, err
	}
	if p.completing {
		return 0, ErrInFlight
	}
	if _, isTask := p.lesson.Blocks[p.cursor].Content.(block.Task); isTask {
		if p.pending == p.cursor || p.results[p.cursor] == nil {
			return 0, ErrGated
		}
	}
	if p.cursor == len(p.lesson.Blocks)-1 {
		return StepFinal, nil
	}
	p.cursor++
	return StepMoved, nil
}

// CompletionTicket ties a completion result to its player.
type CompletionTicket struct {
	player   *Player
	LessonID string
}

// BeginComplete marks completion as in flight. The caller invokes the
// Completer and hands the outcome to FinishComplete.
func (p *Player) BeginComplete() (CompletionTicket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkOpenLocked(); err != nil {
		return CompletionTicket{}, err
	}
	if p.completing {
		return CompletionTicket{}, ErrInFlight
	}
	p.completing = true
	return CompletionTicket{player: p, LessonID: p.lesson.ID}, nil
}

// FinishComplete records a completion outcome. On success the player is
// Completed and a Refresh goes to the notifier. On failure it returns a
// *CompletionError and stays on the last block.
func (p *Player) FinishComplete(t CompletionTicket, completeErr error) error {
	if t.player != p {
		return ErrClosed
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Debug("dropping completion result for closed session")
		return ErrClosed
	}
	p.completing = false
	if completeErr != nil {
		p.mu.Unlock()
		p.log.Warn("completion failed", "error", completeErr)
		return &CompletionError{LessonID: t.LessonID, Err: completeErr}
	}
	p.state = Completed
	p.lesson.Completed = true
	r := progress.Refresh{GroupID: p.lesson.GroupID, LessonID: p.lesson.ID, At: p.deps.Now()}
	p.mu.Unlock()

	p.log.Info("lesson completed")
	if p.deps.Notifier != nil {
		p.deps.Notifier.Notify(r)
	}
	return nil
}

// Next advances, completing the lesson when pressed on the last block.
func (p *Player) Next(ctx context.Context) (Step, error) {
	step, err := p.Advance()
	if err != nil || step == StepMoved {
		return step, err
	}
	t, err := p.BeginComplete()
	if err != nil {
		return 0, err
	}
	if err := p.FinishComplete(t, p.deps.Completer.MarkComplete(ctx, t.LessonID)); err != nil {
		return 0, err
	}
	return StepCompleted, nil
}

// Prev moves back one block. Answers and feedback are kept.
func (p *Player) Prev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.state == Completed || p.cursor == 0 {
		return false
	}
	p.cursor--
	return true
}

// Close disposes the session. Results that arrive afterwards are dropped.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.pending = -1
	p.completing = false
}
