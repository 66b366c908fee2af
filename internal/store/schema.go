package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lessons (
		id         TEXT PRIMARY KEY,
		group_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS lessons_group ON lessons (group_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS lesson_blocks (
		lesson_id TEXT NOT NULL REFERENCES lessons (id) ON DELETE CASCADE,
		position  INTEGER NOT NULL,
		type      TEXT NOT NULL,
		content   TEXT NOT NULL,
		PRIMARY KEY (lesson_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		subject     TEXT NOT NULL,
		task_number INTEGER NOT NULL,
		text        TEXT NOT NULL,
		answer      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_subject ON tasks (subject, task_number)`,
	`CREATE TABLE IF NOT EXISTS completions (
		learner_id   TEXT NOT NULL,
		lesson_id    TEXT NOT NULL REFERENCES lessons (id) ON DELETE CASCADE,
		sequence     INTEGER NOT NULL,
		completed_at INTEGER NOT NULL,
		PRIMARY KEY (learner_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id         TEXT PRIMARY KEY,
		sequence   INTEGER NOT NULL,
		learner_id TEXT NOT NULL,
		task_id    TEXT NOT NULL,
		answer     TEXT NOT NULL,
		feedback   TEXT NOT NULL,
		correct    INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		sequence      INTEGER PRIMARY KEY,
		created_at    INTEGER NOT NULL,
		purpose       TEXT NOT NULL,
		model         TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cost_usd      REAL NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error         TEXT NOT NULL,
		request       TEXT NOT NULL,
		response      TEXT NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%.40s...: %w", stmt, err)
		}
	}
	return nil
}
