package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abhisek/examprep/internal/lesson"
)

// Tasks implements lesson.TaskBank and the grading task lookup.
type Tasks struct {
	s *Store
}

// Tasks returns the task-bank repository.
func (s *Store) Tasks() *Tasks {
	return &Tasks{s: s}
}

var _ lesson.TaskBank = (*Tasks)(nil)

// Catalog lists a subject's tasks by task number.
func (t *Tasks) Catalog(ctx context.Context, subject string) (lesson.Catalog, error) {
	rows, err := t.s.db.QueryContext(ctx,
		`SELECT id, subject, task_number, text, answer FROM tasks WHERE subject = ? ORDER BY task_number, id`,
		subject)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out lesson.Catalog
	for rows.Next() {
		var task lesson.Task
		if err := rows.Scan(&task.ID, &task.Subject, &task.TaskNumber, &task.Text, &task.Answer); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// Task returns one task with its answer key.
func (t *Tasks) Task(ctx context.Context, id string) (lesson.Task, error) {
	task := lesson.Task{ID: id}
	err := t.s.db.QueryRowContext(ctx,
		`SELECT subject, task_number, text, answer FROM tasks WHERE id = ?`, id,
	).Scan(&task.Subject, &task.TaskNumber, &task.Text, &task.Answer)
	if errors.Is(err, sql.ErrNoRows) {
		return lesson.Task{}, fmt.Errorf("task %s: %w", id, lesson.ErrNotFound)
	}
	if err != nil {
		return lesson.Task{}, fmt.Errorf("query task %s: %w", id, err)
	}
	return task, nil
}

// Put inserts or replaces a task.
func (t *Tasks) Put(ctx context.Context, task lesson.Task) error {
	_, err := t.s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks (id, subject, task_number, text, answer) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Subject, task.TaskNumber, task.Text, task.Answer)
	if err != nil {
		return fmt.Errorf("put task %s: %w", task.ID, err)
	}
	return nil
}

// SeedTasks is the starter task bank loaded by Seed.
var SeedTasks = []lesson.Task{
	{ID: "1", Subject: "math", TaskNumber: 1, Text: "Find sin(x) if cos(x) = 0.6 and x lies in the first quarter.", Answer: "0.8"},
	{ID: "2", Subject: "math", TaskNumber: 2, Text: "Compute log2(32) - log3(9).", Answer: "3"},
	{ID: "3", Subject: "math", TaskNumber: 3, Text: "Solve 2^(x+1) = 16.", Answer: "3"},
	{ID: "4", Subject: "math", TaskNumber: 4, Text: "Compute log5(0.04).", Answer: "-2"},
	{ID: "5", Subject: "math", TaskNumber: 5, Text: "Solve 3^(2x-1) = 27.", Answer: "2"},
	{ID: "6", Subject: "math", TaskNumber: 6, Text: "Find tan(a) if sin(a) = 3/5 and cos(a) = 4/5.", Answer: "3/4"},
	{ID: "7", Subject: "math", TaskNumber: 7, Text: "Solve log4(x) = 1.5.", Answer: "8"},
}

// Seed loads the starter task bank and a demo lesson into an empty
// database. It does nothing when tasks already exist.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, task := range SeedTasks {
		if err := s.Tasks().Put(ctx, task); err != nil {
			return err
		}
	}
	_, err := s.Lessons().Create(ctx, DemoGroupID, demoLesson)
	return err
}
