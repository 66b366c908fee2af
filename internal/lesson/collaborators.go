package lesson

import "context"

// Reader fetches lessons.
type Reader interface {
	// Get returns a lesson without progress, for authoring.
	Get(ctx context.Context, id string) (Lesson, error)

	// GetWithProgress returns a lesson with the caller's completion flag.
	GetWithProgress(ctx context.Context, id string) (Progress, error)

	// ListByGroup returns the lessons of a group with completion flags.
	ListByGroup(ctx context.Context, groupID string) ([]Summary, error)
}

// Writer persists lesson drafts. Each call replaces the stored block
// list as a whole.
type Writer interface {
	Save(ctx context.Context, id string, d Draft) error
	Create(ctx context.Context, groupID string, d Draft) (string, error)
}

// TaskBank lists tasks for authoring.
type TaskBank interface {
	Catalog(ctx context.Context, subject string) (Catalog, error)
}

// Grader is the grading oracle for task attempts.
type Grader interface {
	Grade(ctx context.Context, a Attempt) (Verdict, error)
}

// Completer records that the caller finished a lesson. The record is
// one-way; there is no operation to clear it.
type Completer interface {
	MarkComplete(ctx context.Context, lessonID string) error
}
