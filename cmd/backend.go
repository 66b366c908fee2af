package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/examprep/internal/api"
	"github.com/abhisek/examprep/internal/grading"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/progress"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/server"
	"github.com/abhisek/examprep/internal/store"
)

// backend is the lesson service a command works against: the local
// database or a lesson server.
type backend struct {
	env   screens.Env
	hub   *progress.Hub
	store *store.Store // nil when remote
}

func (b *backend) Close() {
	if b.store != nil {
		b.store.Close()
	}
}

// openStore opens and seeds the local database.
func openStore(ctx context.Context) (*store.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Seed(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}
	return st, nil
}

// newGrader builds the grading service over st, with LLM feedback when a
// provider is configured.
func newGrader(ctx context.Context, st *store.Store, log *logger.Logger) *grading.Service {
	provider, err := llm.NewProvider(ctx, cfg.LLM, st, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Answers will be checked against the answer key only.")
		provider = nil
	}
	return grading.NewService(st.Tasks(), provider, grading.DefaultConfig(), log)
}

// openBackend connects to the configured lesson service. log is used by
// everything behind the returned env.
func openBackend(ctx context.Context, log *logger.Logger) (*backend, error) {
	b := &backend{hub: progress.NewHub(log)}
	env := screens.Env{
		Identity: cfg.Identity(),
		GroupID:  cfg.GroupID,
		Subject:  cfg.Subject,
		Log:      log,
	}

	if cfg.Remote() {
		token := cfg.Token
		if token == "" {
			token = server.Token(env.Identity)
		}
		c := api.NewClient(cfg.APIURL, token, api.WithLogger(log))
		env.Reader, env.Writer, env.Tasks, env.Grader, env.Completer = c, c, c, c, c
	} else {
		st, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		b.store = st
		lessons := st.Lessons()
		env.Reader, env.Writer, env.Completer = lessons, lessons, lessons
		env.Tasks = st.Tasks()
		env.Grader = recordingGrader{Grader: newGrader(ctx, st, log), store: st, log: log}
	}

	tracker := progress.NewTracker(env.Reader)
	env.Tracker = tracker
	env.Notifier = progress.NotifierFunc(func(r progress.Refresh) {
		tracker.Notify(r)
		b.hub.Notify(r)
	})
	b.env = env
	return b, nil
}

// recordingGrader stores each graded attempt, as the lesson server does
// for remote clients.
type recordingGrader struct {
	lesson.Grader
	store *store.Store
	log   *logger.Logger
}

func (g recordingGrader) Grade(ctx context.Context, a lesson.Attempt) (lesson.Verdict, error) {
	v, err := g.Grader.Grade(ctx, a)
	if err != nil {
		return v, err
	}
	if _, err := g.store.RecordAttempt(ctx, a, v); err != nil {
		g.log.Warn("attempt not recorded", "task_id", a.TaskID, "error", err)
	}
	return v, nil
}

// callContext carries the configured caller.
func callContext(ctx context.Context) context.Context {
	return lesson.WithIdentity(ctx, cfg.Identity())
}
