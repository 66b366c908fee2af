// Package progress carries the completion protocol shared by the
// authoring and playback engines: the refresh directive emitted when a
// learner finishes a lesson, and the list-side cache that honours it.
//
// Completion itself is a one-way record owned by the lesson.Completer
// collaborator. Playback is its only writer; list views read it.
package progress

import (
	"sync"
	"time"

	"github.com/abhisek/examprep/internal/logger"
)

// Refresh tells list and overview views that progress for a group has
// changed and cached state must be re-fetched.
type Refresh struct {
	GroupID  string
	LessonID string
	At       time.Time
}

// Notifier receives refresh directives.
type Notifier interface {
	Notify(Refresh)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Refresh)

func (f NotifierFunc) Notify(r Refresh) { f(r) }

// Subscription is a Hub listener.
type Subscription struct {
	C  <-chan Refresh
	ch chan Refresh
}

// Hub fans refresh directives out to subscribers. Delivery never blocks
// the publisher: a subscriber with a full buffer misses the directive.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *logger.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: log.With("component", "progress.Hub"),
	}
}

// Subscribe registers a listener with the given buffer size.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Refresh, buffer)
	sub := &Subscription{C: ch, ch: ch}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Notify implements Notifier.
func (h *Hub) Notify(r Refresh) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- r:
		default:
			h.logger.Warn("dropping refresh; subscriber buffer full", "group_id", r.GroupID, "lesson_id", r.LessonID)
		}
	}
}
