package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizapp-service/internal/domain"
)

// AttemptStore keeps attempt records in memory with the same upsert
// semantics as the Postgres store: one record per (user, quiz) pair.
type AttemptStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	records map[attemptKey]domain.Attempt
}

type attemptKey struct {
	userID int64
	quizID int64
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		clock:   time.Now,
		records: make(map[attemptKey]domain.Attempt),
	}
}

// NewAttemptStoreWithClock allows deterministic timestamps in tests.
func NewAttemptStoreWithClock(clock func() time.Time) *AttemptStore {
	return &AttemptStore{
		clock:   clock,
		records: make(map[attemptKey]domain.Attempt),
	}
}

func (s *AttemptStore) Find(_ context.Context, userID, quizID int64) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.records[attemptKey{userID, quizID}]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID int64) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for key, attempt := range s.records {
		if key.userID == userID {
			out = append(out, attempt)
		}
	}
	sortAttempts(out)
	return out, nil
}

func (s *AttemptStore) ListPlayedBetween(_ context.Context, start, end time.Time) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for _, attempt := range s.records {
		if !attempt.PlayedAt.Before(start) && !attempt.PlayedAt.After(end) {
			out = append(out, attempt)
		}
	}
	sortAttempts(out)
	return out, nil
}

// Upsert creates the record on first submission and updates score and
// played-at in place on every later one. The record ID never changes once
// assigned.
func (s *AttemptStore) Upsert(_ context.Context, userID, quizID int64, score int) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{userID, quizID}
	attempt, ok := s.records[key]
	if !ok {
		attempt = domain.Attempt{
			ID:     uuid.New().String(),
			UserID: userID,
			QuizID: quizID,
		}
	}
	attempt.Score = score
	attempt.PlayedAt = s.clock()
	s.records[key] = attempt
	return attempt, nil
}

func sortAttempts(attempts []domain.Attempt) {
	sort.Slice(attempts, func(i, j int) bool {
		if !attempts[i].PlayedAt.Equal(attempts[j].PlayedAt) {
			return attempts[i].PlayedAt.Before(attempts[j].PlayedAt)
		}
		return attempts[i].QuizID < attempts[j].QuizID
	})
}
