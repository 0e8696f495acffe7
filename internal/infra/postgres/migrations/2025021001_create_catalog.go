package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS quizzes (
    quiz_id     BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    start_date  DATE NOT NULL,
    end_date    DATE NOT NULL,
    CHECK (end_date >= start_date)
);
CREATE INDEX IF NOT EXISTS idx_quizzes_start_date ON quizzes (start_date);
CREATE INDEX IF NOT EXISTS idx_quizzes_end_date ON quizzes (end_date);

CREATE TABLE IF NOT EXISTS questions (
    question_id       BIGSERIAL PRIMARY KEY,
    quiz_id           BIGINT NOT NULL REFERENCES quizzes (quiz_id) ON DELETE CASCADE,
    text              TEXT NOT NULL,
    answer            TEXT NOT NULL,
    incorrect_answers JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_questions_quiz_id ON questions (quiz_id);
`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS questions; DROP TABLE IF EXISTS quizzes`)
			return err
		},
	)
}
