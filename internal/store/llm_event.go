package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/examprep/internal/llm"
)

// QueryOpts filters event queries.
type QueryOpts struct {
	Limit   int // 0 = unlimited
	Purpose string
	From    time.Time
}

// LLMEventRecord is a stored LLM call.
type LLMEventRecord struct {
	Sequence int64
	llm.Event
}

// ModelUsage aggregates LLM calls per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

var _ llm.EventSink = (*Store)(nil)

// RecordLLMEvent implements llm.EventSink.
func (s *Store) RecordLLMEvent(ctx context.Context, e llm.Event) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO llm_events
		(sequence, created_at, purpose, model, input_tokens, output_tokens, cost_usd, latency_ms, success, error, request, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq, millis(e.At), e.Purpose, e.Model, e.InputTokens, e.OutputTokens, e.CostUSD,
		e.LatencyMs, e.Success, e.Error, e.Request, e.Response)
	if err != nil {
		return fmt.Errorf("save LLM event: %w", err)
	}
	return nil
}

const llmEventColumns = `sequence, created_at, purpose, model, input_tokens, output_tokens,
	cost_usd, latency_ms, success, error, request, response`

func scanLLMEvent(sc interface{ Scan(...any) error }) (LLMEventRecord, error) {
	var (
		r  LLMEventRecord
		at int64
	)
	err := sc.Scan(&r.Sequence, &at, &r.Purpose, &r.Model, &r.InputTokens, &r.OutputTokens,
		&r.CostUSD, &r.LatencyMs, &r.Success, &r.Error, &r.Request, &r.Response)
	r.At = fromMillis(at)
	return r, err
}

// QueryLLMEvents returns events newest first.
func (s *Store) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	q := `SELECT ` + llmEventColumns + ` FROM llm_events WHERE created_at >= ?`
	args := []any{millis(opts.From)}
	if opts.Purpose != "" {
		q += ` AND purpose = ?`
		args = append(args, opts.Purpose)
	}
	q += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		r, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLLMEvent returns one event, or nil if there is none.
func (s *Store) GetLLMEvent(ctx context.Context, seq int64) (*LLMEventRecord, error) {
	r, err := scanLLMEvent(s.db.QueryRowContext(ctx,
		`SELECT `+llmEventColumns+` FROM llm_events WHERE sequence = ?`, seq))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", seq, err)
	}
	return &r, nil
}

// LLMUsage sums calls, tokens and cost per model.
func (s *Store) LLMUsage(ctx context.Context) ([]ModelUsage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		FROM llm_events GROUP BY model ORDER BY SUM(cost_usd) DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
