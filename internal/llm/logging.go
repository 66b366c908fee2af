package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/logger"
)

// Event is one recorded LLM call.
type Event struct {
	At           time.Time
	Purpose      string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LatencyMs    int64
	Success      bool
	Error        string
	Request      string
	Response     string
}

// EventSink stores LLM call events.
type EventSink interface {
	RecordLLMEvent(ctx context.Context, e Event) error
}

// LoggingProvider records every call to a sink and the process log.
type LoggingProvider struct {
	inner Provider
	sink  EventSink
	log   *logger.Logger
	now   func() time.Time
}

// WithLogging wraps p. sink may be nil.
func WithLogging(p Provider, sink EventSink, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, sink: sink, log: log, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	e := Event{
		At:        start,
		Purpose:   PurposeFrom(ctx),
		Model:     l.inner.ModelID(),
		LatencyMs: l.now().Sub(start).Milliseconds(),
		Success:   err == nil,
		Request:   describeRequest(req),
	}
	if resp != nil {
		e.Model = resp.Model
		e.InputTokens = resp.Usage.InputTokens
		e.OutputTokens = resp.Usage.OutputTokens
		e.Response = string(resp.Content)
		if c := LookupCost(resp.Model); c != nil {
			e.CostUSD = c.Cost(e.InputTokens, e.OutputTokens)
		}
	}
	if err != nil {
		e.Error = err.Error()
	}

	l.log.Debug("llm call",
		"purpose", e.Purpose, "model", e.Model, "latency_ms", e.LatencyMs,
		"input_tokens", e.InputTokens, "output_tokens", e.OutputTokens, "success", e.Success)

	if l.sink != nil {
		if serr := l.sink.RecordLLMEvent(ctx, e); serr != nil {
			l.log.Warn("failed to record llm event", "error", serr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// describeRequest renders a request for the event log.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
