// Package screens holds what every lesson screen shares: the services
// behind them and the messages the app broadcasts.
package screens

import (
	"context"
	"time"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/progress"
)

// CallTimeout bounds one backend call made from a screen.
const CallTimeout = 45 * time.Second

// Env is the backend and caller a screen works for.
type Env struct {
	Identity lesson.Identity
	GroupID  string
	Subject  string

	Reader    lesson.Reader
	Writer    lesson.Writer
	Tasks     lesson.TaskBank
	Grader    lesson.Grader
	Completer lesson.Completer

	Tracker  *progress.Tracker
	Notifier progress.Notifier
	Log      *logger.Logger
}

// Context returns a call context carrying the caller's identity.
func (e Env) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(lesson.WithIdentity(context.Background(), e.Identity), CallTimeout)
}

// CanAuthor reports whether the caller may open the editor.
func (e Env) CanAuthor() bool {
	return e.Identity.Role == lesson.RoleTeacher
}

// Logger never returns nil.
func (e Env) Logger() *logger.Logger {
	if e.Log == nil {
		return logger.Nop()
	}
	return e.Log
}

// RefreshMsg is broadcast to every screen when lesson progress changed.
type RefreshMsg struct {
	progress.Refresh
}
