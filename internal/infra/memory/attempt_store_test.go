package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizapp-service/internal/domain"
)

func TestUpsertCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := NewAttemptStoreWithClock(func() time.Time { return now })

	first, err := store.Upsert(ctx, 7, 1, 2)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected record id assigned on create")
	}
	if first.Score != 2 || !first.PlayedAt.Equal(now) {
		t.Fatalf("unexpected record: %+v", first)
	}

	now = now.Add(time.Hour)
	second, err := store.Upsert(ctx, 7, 1, 5)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected record id stable across upserts, got %s then %s", first.ID, second.ID)
	}
	if second.Score != 5 || !second.PlayedAt.Equal(now) {
		t.Fatalf("expected score and played-at updated, got %+v", second)
	}

	all, err := store.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one record per (user, quiz), got %d", len(all))
	}
}

func TestUpsertSeparatesUsersAndQuizzes(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if _, err := store.Upsert(ctx, 7, 1, 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := store.Upsert(ctx, 7, 2, 2); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := store.Upsert(ctx, 8, 1, 3); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	mine, err := store.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 records for user 7, got %d", len(mine))
	}
}

func TestFindMissingAttempt(t *testing.T) {
	store := NewAttemptStore()
	_, err := store.Find(context.Background(), 7, 1)
	if !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestListPlayedBetweenInclusive(t *testing.T) {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	i := 0
	store := NewAttemptStoreWithClock(func() time.Time {
		t := times[i]
		i++
		return t
	})

	for quiz := int64(1); quiz <= 3; quiz++ {
		if _, err := store.Upsert(ctx, 7, quiz, 1); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	// Both boundary instants are included.
	got, err := store.ListPlayedBetween(ctx, times[0], times[1])
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records inside the range, got %d", len(got))
	}
	if got[0].PlayedAt.After(got[1].PlayedAt) {
		t.Fatalf("expected ascending played-at order, got %+v", got)
	}
}
