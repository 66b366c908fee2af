// Package screenstest builds screen environments backed by an in-memory
// store for screen tests.
package screenstest

import (
	"context"
	"testing"

	"github.com/abhisek/examprep/internal/grading"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/progress"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/store"
)

// Env returns a seeded store and an env acting as role. Refreshes sent
// by screens are appended to the returned slice pointer.
func Env(t *testing.T, role lesson.Role) (screens.Env, *store.Store, *[]progress.Refresh) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var refreshes []progress.Refresh
	lessons := st.Lessons()
	tracker := progress.NewTracker(lessons)
	env := screens.Env{
		Identity:  lesson.Identity{LearnerID: "u1", Role: role},
		GroupID:   store.DemoGroupID,
		Subject:   "math",
		Reader:    lessons,
		Writer:    lessons,
		Tasks:     st.Tasks(),
		Grader:    grading.NewService(st.Tasks(), nil, grading.DefaultConfig(), nil),
		Completer: lessons,
		Tracker:   tracker,
		Notifier: progress.NotifierFunc(func(r progress.Refresh) {
			tracker.Notify(r)
			refreshes = append(refreshes, r)
		}),
	}
	return env, st, &refreshes
}

// DemoLessonID returns the id of the seeded lesson.
func DemoLessonID(t *testing.T, st *store.Store) string {
	t.Helper()
	list, err := st.Lessons().ListByGroup(context.Background(), store.DemoGroupID)
	if err != nil || len(list) == 0 {
		t.Fatalf("demo lesson missing: %v", err)
	}
	return list[0].ID
}
