package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS user_records (
    user_record_id TEXT PRIMARY KEY,
    user_id        BIGINT NOT NULL,
    quiz_id        BIGINT NOT NULL,
    score          INTEGER NOT NULL,
    played_at      TIMESTAMPTZ NOT NULL,
    CONSTRAINT user_records_user_quiz_key UNIQUE (user_id, quiz_id)
);
CREATE INDEX IF NOT EXISTS idx_user_records_played_at ON user_records (played_at);
`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS user_records`)
			return err
		},
	)
}
