package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/logger"
)

// Client talks to the lesson service. The caller's identity is carried
// by the bearer token; the identity in the request context is not sent.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

var (
	_ lesson.Reader    = (*Client)(nil)
	_ lesson.Writer    = (*Client)(nil)
	_ lesson.TaskBank  = (*Client)(nil)
	_ lesson.Grader    = (*Client)(nil)
	_ lesson.Completer = (*Client)(nil)
)

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx response that maps to no domain error.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (c *Client) Get(ctx context.Context, id string) (lesson.Lesson, error) {
	var body LessonBody
	if err := c.do(ctx, http.MethodGet, "/lessons/"+url.PathEscape(id), nil, &body); err != nil {
		return lesson.Lesson{}, err
	}
	return lesson.FromWire(string(body.ID), string(body.GroupID), body.Title, body.Blocks)
}

func (c *Client) GetWithProgress(ctx context.Context, id string) (lesson.Progress, error) {
	var body LessonBody
	if err := c.do(ctx, http.MethodGet, "/lessons/"+url.PathEscape(id)+"/with-progress", nil, &body); err != nil {
		return lesson.Progress{}, err
	}
	l, err := lesson.FromWire(string(body.ID), string(body.GroupID), body.Title, body.Blocks)
	if err != nil {
		return lesson.Progress{}, err
	}
	return lesson.Progress{Lesson: l, Completed: body.Completed != nil && *body.Completed}, nil
}

func (c *Client) ListByGroup(ctx context.Context, groupID string) ([]lesson.Summary, error) {
	var body []SummaryBody
	if err := c.do(ctx, http.MethodGet, "/lessons/group/"+url.PathEscape(groupID), nil, &body); err != nil {
		return nil, err
	}
	out := make([]lesson.Summary, len(body))
	for i, s := range body {
		out[i] = lesson.Summary{
			ID:         string(s.ID),
			GroupID:    string(s.GroupID),
			Title:      s.Title,
			BlockCount: s.BlockCount,
			Completed:  s.Completed,
		}
	}
	return out, nil
}

func (c *Client) Save(ctx context.Context, id string, d lesson.Draft) error {
	req := DraftBody{Title: d.Title, Blocks: d.Blocks}
	return c.do(ctx, http.MethodPut, "/lessons/"+url.PathEscape(id), req, nil)
}

func (c *Client) Create(ctx context.Context, groupID string, d lesson.Draft) (string, error) {
	req := DraftBody{GroupID: ID(groupID), Title: d.Title, Blocks: d.Blocks}
	var body CreatedBody
	if err := c.do(ctx, http.MethodPost, "/lessons", req, &body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", errors.New("api: create returned no lesson id")
	}
	return string(body.ID), nil
}

func (c *Client) Catalog(ctx context.Context, subject string) (lesson.Catalog, error) {
	path := "/tasks?" + url.Values{"subject": {subject}}.Encode()
	var body []TaskBody
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	out := make(lesson.Catalog, len(body))
	for i, t := range body {
		out[i] = lesson.Task{ID: string(t.ID), Subject: t.Subject, TaskNumber: t.TaskNumber, Text: t.Text}
	}
	return out, nil
}

func (c *Client) Grade(ctx context.Context, a lesson.Attempt) (lesson.Verdict, error) {
	var body FeedbackBody
	req := AttemptBody{TaskID: a.TaskID, UserAnswer: a.Answer}
	if err := c.do(ctx, http.MethodPost, "/attempts", req, &body); err != nil {
		return lesson.Verdict{}, err
	}
	return lesson.Verdict{Feedback: body.AIFeedback, Correct: body.Correct}, nil
}

func (c *Client) MarkComplete(ctx context.Context, lessonID string) error {
	return c.do(ctx, http.MethodPost, "/lessons/"+url.PathEscape(lessonID)+"/complete", nil, nil)
}

// do sends a JSON request and decodes a JSON response into out, when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// decodeError maps an error response onto the lesson error taxonomy.
func decodeError(status int, raw []byte) error {
	var body ErrorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, lesson.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, lesson.ErrNotFound)
	case http.StatusUnprocessableEntity:
		index := -1
		if body.Index != nil {
			index = *body.Index
		}
		return &block.ValidationError{Index: index, Reason: msg}
	}
	return &StatusError{Status: status, Code: body.Error, Message: msg}
}
