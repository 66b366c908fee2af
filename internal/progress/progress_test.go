package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/lesson"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe(1)
	b := hub.Subscribe(1)

	r := Refresh{GroupID: "G1", LessonID: "L1", At: time.Unix(0, 0)}
	hub.Notify(r)

	assert.Equal(t, r, <-a.C)
	assert.Equal(t, r, <-b.C)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe(1)

	hub.Notify(Refresh{LessonID: "first"})
	hub.Notify(Refresh{LessonID: "second"})

	assert.Equal(t, "first", (<-sub.C).LessonID)
	select {
	case r := <-sub.C:
		t.Fatalf("unexpected second delivery: %+v", r)
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe(1)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	hub.Notify(Refresh{GroupID: "G1"})
}

type countingReader struct {
	lesson.Reader
	calls int
	list  []lesson.Summary
}

func (r *countingReader) ListByGroup(context.Context, string) ([]lesson.Summary, error) {
	r.calls++
	return r.list, nil
}

func TestTrackerCachesUntilRefresh(t *testing.T) {
	reader := &countingReader{list: []lesson.Summary{{ID: "L1"}, {ID: "L2", Completed: true}}}
	tr := NewTracker(reader)
	ctx := context.Background()

	list, err := tr.Lessons(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, 1, Completed(list))

	_, err = tr.Lessons(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)

	tr.Notify(Refresh{GroupID: "G2"})
	_, _ = tr.Lessons(ctx, "G1")
	assert.Equal(t, 1, reader.calls)

	tr.Notify(Refresh{GroupID: "G1"})
	_, _ = tr.Lessons(ctx, "G1")
	assert.Equal(t, 2, reader.calls)

	tr.Notify(Refresh{})
	_, _ = tr.Lessons(ctx, "G1")
	assert.Equal(t, 3, reader.calls)
}
