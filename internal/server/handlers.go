package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/examprep/internal/api"
	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	l, err := s.deps.Lessons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, api.NewLessonBody(l))
}

func (s *Server) handleGetLessonWithProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Lessons.GetWithProgress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	body := api.NewLessonBody(p.Lesson)
	body.Completed = &p.Completed
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Lessons.ListByGroup(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, api.NewSummaryBodies(list))
}

func (s *Server) handleSaveLesson(w http.ResponseWriter, r *http.Request) {
	var req api.DraftBody
	if !decodeBody(w, r, &req) {
		return
	}
	d := lesson.Draft{Title: req.Title, Blocks: req.Blocks}
	if err := d.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.deps.Lessons.Save(r.Context(), chi.URLParam(r, "id"), d); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req api.DraftBody
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(string(req.GroupID)) == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "groupId is required")
		return
	}
	d := lesson.Draft{Title: req.Title, Blocks: req.Blocks}
	if err := d.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	id, err := s.deps.Lessons.Create(r.Context(), string(req.GroupID), d)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, api.CreatedBody{ID: api.ID(id)})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Lessons.MarkComplete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Tasks.Catalog(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, api.NewTaskBodies(c))
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	var req api.AttemptBody
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TaskID) == "" || strings.TrimSpace(req.UserAnswer) == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "taskId and userAnswer are required")
		return
	}

	a := lesson.Attempt{TaskID: req.TaskID, Answer: req.UserAnswer}
	v, err := s.deps.Grader.Grade(r.Context(), a)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if s.deps.Attempts != nil {
		if _, err := s.deps.Attempts.RecordAttempt(r.Context(), a, v); err != nil {
			s.log.Warn("record attempt failed", "task_id", a.TaskID, "error", err)
		}
	}
	respondJSON(w, http.StatusOK, api.FeedbackBody{AIFeedback: v.Feedback, Correct: v.Correct})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// respondErr maps domain errors onto status codes.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *block.ValidationError
	switch {
	case errors.As(err, &verr):
		body := api.ErrorBody{Error: "invalid", Message: verr.Reason}
		if verr.Index >= 0 {
			body.Index = &verr.Index
		}
		respondJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, lesson.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, lesson.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, api.ErrorBody{Error: code, Message: message})
}
