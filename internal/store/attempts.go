package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/lesson"
)

// AttemptRecord is a stored graded attempt.
type AttemptRecord struct {
	ID        string
	Sequence  int64
	LearnerID string
	lesson.Attempt
	lesson.Verdict
}

// RecordAttempt stores a graded attempt for the learner in ctx.
func (s *Store) RecordAttempt(ctx context.Context, a lesson.Attempt, v lesson.Verdict) (string, error) {
	learner := ""
	if who, ok := lesson.IdentityFrom(ctx); ok {
		learner = who.LearnerID
	}
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, sequence, learner_id, task_id, answer, feedback, correct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seq, learner, a.TaskID, a.Answer, v.Feedback, v.Correct, millis(s.now()))
	if err != nil {
		return "", fmt.Errorf("insert attempt: %w", err)
	}
	return id, nil
}

// Attempts returns a learner's attempts, oldest first.
func (s *Store) Attempts(ctx context.Context, learnerID string) ([]AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sequence, task_id, answer, feedback, correct FROM attempts
		 WHERE learner_id = ? ORDER BY sequence`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		r := AttemptRecord{LearnerID: learnerID}
		if err := rows.Scan(&r.ID, &r.Sequence, &r.TaskID, &r.Answer, &r.Feedback, &r.Correct); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
