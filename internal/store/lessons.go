package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

// Lessons implements lesson.Reader, lesson.Writer and lesson.Completer
// on the store. Progress is read and written for the learner in the
// request context.
type Lessons struct {
	s *Store
}

// Lessons returns the lesson repository.
func (s *Store) Lessons() *Lessons {
	return &Lessons{s: s}
}

var (
	_ lesson.Reader    = (*Lessons)(nil)
	_ lesson.Writer    = (*Lessons)(nil)
	_ lesson.Completer = (*Lessons)(nil)
)

// Get returns a lesson without progress.
func (r *Lessons) Get(ctx context.Context, id string) (lesson.Lesson, error) {
	var groupID, title string
	err := r.s.db.QueryRowContext(ctx,
		`SELECT group_id, title FROM lessons WHERE id = ?`, id,
	).Scan(&groupID, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return lesson.Lesson{}, fmt.Errorf("lesson %s: %w", id, lesson.ErrNotFound)
	}
	if err != nil {
		return lesson.Lesson{}, fmt.Errorf("query lesson %s: %w", id, err)
	}

	wires, err := r.blocks(ctx, id)
	if err != nil {
		return lesson.Lesson{}, err
	}
	return lesson.FromWire(id, groupID, title, wires)
}

func (r *Lessons) blocks(ctx context.Context, id string) ([]block.Wire, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT type, content FROM lesson_blocks WHERE lesson_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query blocks of %s: %w", id, err)
	}
	defer rows.Close()

	var out []block.Wire
	for rows.Next() {
		var w block.Wire
		if err := rows.Scan(&w.Type, &w.Content); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWithProgress returns a lesson with the caller's completion flag.
// Without an identity in ctx the flag is false.
func (r *Lessons) GetWithProgress(ctx context.Context, id string) (lesson.Progress, error) {
	l, err := r.Get(ctx, id)
	if err != nil {
		return lesson.Progress{}, err
	}
	done, err := r.completed(ctx, id)
	if err != nil {
		return lesson.Progress{}, err
	}
	return lesson.Progress{Lesson: l, Completed: done}, nil
}

func (r *Lessons) completed(ctx context.Context, lessonID string) (bool, error) {
	who, ok := lesson.IdentityFrom(ctx)
	if !ok {
		return false, nil
	}
	var n int
	err := r.s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE learner_id = ? AND lesson_id = ?`,
		who.LearnerID, lessonID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query completion: %w", err)
	}
	return n > 0, nil
}

// ListByGroup returns a group's lessons oldest first with the caller's
// completion flags.
func (r *Lessons) ListByGroup(ctx context.Context, groupID string) ([]lesson.Summary, error) {
	learner := ""
	if who, ok := lesson.IdentityFrom(ctx); ok {
		learner = who.LearnerID
	}
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT l.id, l.title,
			(SELECT COUNT(*) FROM lesson_blocks b WHERE b.lesson_id = l.id),
			EXISTS (SELECT 1 FROM completions c WHERE c.lesson_id = l.id AND c.learner_id = ?)
		FROM lessons l
		WHERE l.group_id = ?
		ORDER BY l.created_at, l.rowid`, learner, groupID)
	if err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", groupID, err)
	}
	defer rows.Close()

	var out []lesson.Summary
	for rows.Next() {
		sum := lesson.Summary{GroupID: groupID}
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.BlockCount, &sum.Completed); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Save replaces a lesson's title and block list.
func (r *Lessons) Save(ctx context.Context, id string, d lesson.Draft) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE lessons SET title = ?, updated_at = ? WHERE id = ?`,
			d.Title, millis(r.s.now()), id)
		if err != nil {
			return fmt.Errorf("update lesson %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("lesson %s: %w", id, lesson.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lesson_blocks WHERE lesson_id = ?`, id); err != nil {
			return fmt.Errorf("clear blocks of %s: %w", id, err)
		}
		return insertBlocks(ctx, tx, id, d.Blocks)
	})
}

// Create stores a new lesson and returns its id.
func (r *Lessons) Create(ctx context.Context, groupID string, d lesson.Draft) (string, error) {
	id := uuid.NewString()
	now := millis(r.s.now())
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lessons (id, group_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id, groupID, d.Title, now, now); err != nil {
			return fmt.Errorf("insert lesson: %w", err)
		}
		return insertBlocks(ctx, tx, id, d.Blocks)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func insertBlocks(ctx context.Context, tx *sql.Tx, id string, blocks []block.Wire) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lesson_blocks (lesson_id, position, type, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare block insert: %w", err)
	}
	defer stmt.Close()
	for i, w := range blocks {
		if _, err := stmt.ExecContext(ctx, id, i, w.Type, w.Content); err != nil {
			return fmt.Errorf("insert block %d: %w", i+1, err)
		}
	}
	return nil
}

// MarkComplete records that the caller finished a lesson. Repeated calls
// keep the first record.
func (r *Lessons) MarkComplete(ctx context.Context, lessonID string) error {
	who, ok := lesson.IdentityFrom(ctx)
	if !ok || who.LearnerID == "" {
		return fmt.Errorf("mark complete: %w", lesson.ErrUnauthorized)
	}
	if _, err := r.Get(ctx, lessonID); err != nil {
		return err
	}
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completions (learner_id, lesson_id, sequence, completed_at) VALUES (?, ?, ?, ?)`,
		who.LearnerID, lessonID, seq, millis(r.s.now()))
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (r *Lessons) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
