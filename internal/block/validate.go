package block

import (
	"fmt"
	"strings"
)

// Bounds of a TASK_GROUP drill size.
const (
	MinTaskGroupCount = 1
	MaxTaskGroupCount = 20
)

// ValidationError reports content that cannot be saved.
type ValidationError struct {
	// Index is the position of the offending block, or -1 when the error
	// is not about a specific block.
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("block %d: %s", e.Index+1, e.Reason)
	}
	return e.Reason
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a block's content against the rules for its kind.
// It returns nil or a *ValidationError with Index -1.
func Validate(b Block) error {
	if err := Visit[*ValidationError](b.Content, validator{}); err != nil {
		return err
	}
	return nil
}

type validator struct{}

func (validator) VisitTheory(Theory) *ValidationError { return nil }

func (validator) VisitTask(t Task) *ValidationError {
	if strings.TrimSpace(t.Ref) == "" {
		return invalid("task block has no task selected")
	}
	return nil
}

func (validator) VisitTaskGroup(g TaskGroup) *ValidationError {
	if g.Count < MinTaskGroupCount || g.Count > MaxTaskGroupCount {
		return invalid("task group count %d is outside [%d, %d]", g.Count, MinTaskGroupCount, MaxTaskGroupCount)
	}
	return nil
}

// Empty CHECK messages are filled in at render time.
func (validator) VisitCheck(Check) *ValidationError { return nil }
