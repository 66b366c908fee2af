// Package server serves the lesson API over HTTP for local development
// and for the remote client in internal/api.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/logger"
)

// LessonStore is the lesson repository the server exposes.
type LessonStore interface {
	lesson.Reader
	lesson.Writer
	lesson.Completer
}

// AttemptRecorder stores graded attempts for the learner in ctx.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a lesson.Attempt, v lesson.Verdict) (string, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Lessons  LessonStore
	Tasks    lesson.TaskBank
	Grader   lesson.Grader
	Attempts AttemptRecorder
}

// Config holds server tunables.
type Config struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		RequestTimeout: 60 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// Server represents the HTTP API server
type Server struct {
	cfg    Config
	deps   Deps
	log    *logger.Logger
	router *chi.Mux
}

// New builds a server with its routes.
func New(cfg Config, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/lessons", func(r chi.Router) {
			r.With(requireRole(lesson.RoleTeacher)).Post("/", s.handleCreateLesson)
			r.Get("/group/{groupId}", s.handleListLessons)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetLesson)
				r.With(requireRole(lesson.RoleTeacher)).Put("/", s.handleSaveLesson)
				r.Get("/with-progress", s.handleGetLessonWithProgress)
				r.Post("/complete", s.handleComplete)
			})
		})

		r.Get("/tasks", s.handleListTasks)
		r.Post("/attempts", s.handleAttempt)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}
