package domain_test

import (
	"testing"
	"time"

	"quizapp-service/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyStatus(t *testing.T) {
	start := date(2026, time.March, 10)
	end := date(2026, time.March, 20)

	cases := []struct {
		name string
		now  time.Time
		want domain.Status
	}{
		{"day before start", date(2026, time.March, 9), domain.StatusUpcoming},
		{"on start date", start, domain.StatusActive},
		{"mid window", date(2026, time.March, 15), domain.StatusActive},
		{"on end date", end, domain.StatusActive},
		{"day after end", date(2026, time.March, 21), domain.StatusExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.ClassifyStatus(start, end, tc.now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyStatusIgnoresTimeOfDay(t *testing.T) {
	start := date(2026, time.March, 10)
	end := date(2026, time.March, 20)

	// Late on the end date is still inside the window.
	lastMinute := time.Date(2026, time.March, 20, 23, 59, 0, 0, time.UTC)
	if got := domain.ClassifyStatus(start, end, lastMinute); got != domain.StatusActive {
		t.Fatalf("expected Active at end of the last day, got %s", got)
	}

	// Early on the day before the start is still upcoming.
	earlyMorning := time.Date(2026, time.March, 9, 0, 1, 0, 0, time.UTC)
	if got := domain.ClassifyStatus(start, end, earlyMorning); got != domain.StatusUpcoming {
		t.Fatalf("expected Upcoming before the start day, got %s", got)
	}
}

func TestStatusAtPrefersBackendStatus(t *testing.T) {
	quiz := domain.Quiz{
		StartDate: date(2026, time.March, 10),
		EndDate:   date(2026, time.March, 20),
		Status:    domain.StatusExpired,
	}
	// Dates say Active; the set status wins.
	if got := quiz.StatusAt(date(2026, time.March, 15)); got != domain.StatusExpired {
		t.Fatalf("expected backend status to win, got %s", got)
	}

	quiz.Status = ""
	if got := quiz.StatusAt(date(2026, time.March, 15)); got != domain.StatusActive {
		t.Fatalf("expected derived Active, got %s", got)
	}
}

func TestPlayable(t *testing.T) {
	quiz := domain.Quiz{
		StartDate: date(2026, time.March, 10),
		EndDate:   date(2026, time.March, 20),
	}
	if !quiz.Playable(date(2026, time.March, 10)) {
		t.Fatalf("expected quiz playable on start date")
	}
	if quiz.Playable(date(2026, time.March, 21)) {
		t.Fatalf("expected quiz not playable after end date")
	}
}

func TestAllOptionsMergesCorrectAnswerLast(t *testing.T) {
	q := domain.Question{
		Answer:           "Paris",
		IncorrectAnswers: []string{"London", "Berlin", "Madrid"},
	}
	opts := q.AllOptions()
	if len(opts) != 4 {
		t.Fatalf("expected 4 options, got %d", len(opts))
	}
	if opts[3] != "Paris" {
		t.Fatalf("expected correct answer appended last, got %v", opts)
	}
}

func TestAllOptionsPreMerged(t *testing.T) {
	q := domain.Question{
		Answer:  "Paris",
		Options: []string{"Paris", "London", "Berlin", "Madrid"},
	}
	opts := q.AllOptions()
	if len(opts) != 4 {
		t.Fatalf("expected the pre-merged list, got %v", opts)
	}

	opts[0] = "mutated"
	if q.Options[0] != "Paris" {
		t.Fatalf("AllOptions must return a copy")
	}
}
