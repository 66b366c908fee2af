// Package grading is the grading oracle behind task attempts. It checks
// answers against the task bank's key and, when an LLM is configured,
// asks it for feedback worded for the learner.
package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/logger"
)

// Canned feedback used when no LLM feedback is available.
const (
	CorrectFeedback   = "Correct!"
	IncorrectFeedback = "Incorrect. Check your working and compare with the worked solution."
)

// ErrUngradable is returned for a task with no answer key when no LLM is
// configured.
var ErrUngradable = errors.New("task has no answer key")

// TaskSource looks up a single task, answer key included.
type TaskSource interface {
	Task(ctx context.Context, id string) (lesson.Task, error)
}

// Config holds configuration for LLM feedback.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   256,
		Temperature: 0.2,
	}
}

// Service implements lesson.Grader.
type Service struct {
	tasks    TaskSource
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

// NewService creates a grading service. provider may be nil.
func NewService(tasks TaskSource, provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{tasks: tasks, provider: provider, cfg: cfg, log: log}
}

// Grade checks an attempt.
func (s *Service) Grade(ctx context.Context, a lesson.Attempt) (lesson.Verdict, error) {
	task, err := s.tasks.Task(ctx, a.TaskID)
	if err != nil {
		return lesson.Verdict{}, fmt.Errorf("look up task %s: %w", a.TaskID, err)
	}

	key := strings.TrimSpace(task.Answer)
	if key == "" {
		if s.provider == nil {
			return lesson.Verdict{}, fmt.Errorf("task %s: %w", a.TaskID, ErrUngradable)
		}
		return s.askLLM(ctx, task, a.Answer, nil)
	}

	correct := CheckAnswer(a.Answer, key)
	if s.provider != nil {
		v, err := s.askLLM(ctx, task, a.Answer, &correct)
		if err == nil {
			return v, nil
		}
		s.log.Warn("llm feedback failed, using canned feedback", "task", task.ID, "error", err)
	}
	return canned(correct), nil
}

func canned(correct bool) lesson.Verdict {
	if correct {
		return lesson.Verdict{Feedback: CorrectFeedback, Correct: true}
	}
	return lesson.Verdict{Feedback: IncorrectFeedback}
}

// askLLM asks the provider for feedback. When keyed is set the key's
// verdict wins over the model's.
func (s *Service) askLLM(ctx context.Context, task lesson.Task, answer string, keyed *bool) (lesson.Verdict, error) {
	ctx = llm.WithPurpose(ctx, "grading")

	p := feedbackPrompt{TaskNumber: task.TaskNumber, Text: task.Text, Answer: answer}
	if keyed != nil {
		p.Key = task.Answer
		p.Correct = *keyed
	}
	msg, err := buildFeedbackMessage(p)
	if err != nil {
		return lesson.Verdict{}, fmt.Errorf("build feedback prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      feedbackSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      FeedbackSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return lesson.Verdict{}, fmt.Errorf("LLM grading failed: %w", err)
	}

	var out feedbackOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return lesson.Verdict{}, fmt.Errorf("failed to parse grading response: %w", err)
	}

	v := lesson.Verdict{Feedback: strings.TrimSpace(out.Feedback), Correct: out.Correct}
	if keyed != nil {
		v.Correct = *keyed
	}
	return v, nil
}
