package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quizapp-service/internal/domain"
)

type attemptRecord struct {
	bun.BaseModel `bun:"table:user_records,alias:ur"`

	ID       string    `bun:"user_record_id,pk"`
	UserID   int64     `bun:"user_id,notnull"`
	QuizID   int64     `bun:"quiz_id,notnull"`
	Score    int       `bun:"score,notnull"`
	PlayedAt time.Time `bun:"played_at,notnull"`
}

func (r attemptRecord) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:       r.ID,
		UserID:   r.UserID,
		QuizID:   r.QuizID,
		Score:    r.Score,
		PlayedAt: r.PlayedAt,
	}
}

// AttemptStore persists attempt records via bun. Uniqueness of the
// (user_id, quiz_id) pair is enforced by a database constraint; Upsert rides
// on it with ON CONFLICT DO UPDATE so resubmissions never create duplicates.
type AttemptStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db, clock: time.Now}
}

func (s *AttemptStore) Find(ctx context.Context, userID, quizID int64) (domain.Attempt, error) {
	var rec attemptRecord
	err := s.db.NewSelect().Model(&rec).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("find attempt: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID int64) ([]domain.Attempt, error) {
	var recs []attemptRecord
	err := s.db.NewSelect().Model(&recs).
		Where("user_id = ?", userID).
		Order("played_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return toDomainList(recs), nil
}

func (s *AttemptStore) ListPlayedBetween(ctx context.Context, start, end time.Time) ([]domain.Attempt, error) {
	var recs []attemptRecord
	err := s.db.NewSelect().Model(&recs).
		Where("played_at BETWEEN ? AND ?", start, end).
		Order("played_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts between: %w", err)
	}
	return toDomainList(recs), nil
}

func (s *AttemptStore) Upsert(ctx context.Context, userID, quizID int64, score int) (domain.Attempt, error) {
	rec := &attemptRecord{
		ID:       uuid.New().String(),
		UserID:   userID,
		QuizID:   quizID,
		Score:    score,
		PlayedAt: s.clock(),
	}
	_, err := s.db.NewInsert().Model(rec).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("played_at = EXCLUDED.played_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("upsert attempt: %w", err)
	}
	return rec.toDomain(), nil
}

func toDomainList(recs []attemptRecord) []domain.Attempt {
	out := make([]domain.Attempt, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out
}
