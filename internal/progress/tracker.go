package progress

import (
	"context"
	"sync"

	"github.com/abhisek/examprep/internal/lesson"
)

// Tracker caches group lesson lists for list views. The cache is
// informational: completion flags in it are never written back, and a
// Refresh for a group drops that group's entry.
type Tracker struct {
	reader lesson.Reader

	mu      sync.Mutex
	byGroup map[string][]lesson.Summary
}

// NewTracker creates a Tracker backed by reader.
func NewTracker(reader lesson.Reader) *Tracker {
	return &Tracker{reader: reader, byGroup: make(map[string][]lesson.Summary)}
}

// Lessons returns the group's lessons, fetching when not cached.
func (t *Tracker) Lessons(ctx context.Context, groupID string) ([]lesson.Summary, error) {
	t.mu.Lock()
	cached, ok := t.byGroup[groupID]
	t.mu.Unlock()
	if ok {
		return cached, nil
	}

	list, err := t.reader.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, &lesson.LoadError{Op: "lessons of group " + groupID, Err: err}
	}

	t.mu.Lock()
	t.byGroup[groupID] = list
	t.mu.Unlock()
	return list, nil
}

// Notify implements Notifier by invalidating the refreshed group. A
// directive without a group clears everything.
func (t *Tracker) Notify(r Refresh) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.GroupID == "" {
		t.byGroup = make(map[string][]lesson.Summary)
		return
	}
	delete(t.byGroup, r.GroupID)
}

// Completed counts completed lessons in a list.
func Completed(list []lesson.Summary) int {
	n := 0
	for _, s := range list {
		if s.Completed {
			n++
		}
	}
	return n
}
