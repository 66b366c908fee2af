package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTask is returned by answer and submit actions on a block that
	// is not a TASK.
	ErrNotTask = errors.New("current block is not a task")

	// ErrEmptyAnswer is returned by submit when the answer is blank.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrInFlight is returned while the action's own request is outstanding.
	ErrInFlight = errors.New("request already in flight")

	// ErrLocked is returned once a task has feedback. A task is graded
	// at most once per play-through.
	ErrLocked = errors.New("task already answered")

	// ErrGated is returned by Next on a task without feedback.
	ErrGated = errors.New("answer the task before moving on")

	// ErrClosed is returned after Close, and for results that arrive
	// after the session was closed.
	ErrClosed = errors.New("playback session closed")

	// ErrCompleted is returned by actions after the lesson was completed.
	ErrCompleted = errors.New("lesson already completed")
)

// CompletionError reports a failed completion call. The player stays on
// the last block and Next may be pressed again.
type CompletionError struct {
	LessonID string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("complete lesson %s: %v", e.LessonID, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
