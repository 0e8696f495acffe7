package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"quizapp-service/internal/domain"
)

// QuizCatalog reads quiz metadata.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// CatalogAdmin writes catalog entries. CreateQuiz rejects windows whose end
// date precedes the start date with domain.ErrInvalidDates.
type CatalogAdmin interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	AddQuestion(ctx context.Context, quizID int64, q domain.Question) (domain.Question, error)
}

// PlayedQuiz pairs a quiz with the user's existing attempt record.
type PlayedQuiz struct {
	Quiz    domain.Quiz    `json:"quiz"`
	Attempt domain.Attempt `json:"attempt"`
}

// CatalogOverview buckets the catalog for one user. A quiz the user already
// attempted lands in Played regardless of its temporal status; the remaining
// quizzes are grouped by status. Only Active quizzes are playable.
type CatalogOverview struct {
	Played   []PlayedQuiz  `json:"played"`
	Active   []domain.Quiz `json:"active"`
	Upcoming []domain.Quiz `json:"upcoming"`
	Expired  []domain.Quiz `json:"expired"`
}

// DashboardSummary aggregates a user's attempt history.
type DashboardSummary struct {
	TotalAttempted int              `json:"totalAttempted"`
	LastPlayed     time.Time        `json:"lastPlayed"`
	ScoreByQuiz    map[string]int   `json:"scoreByQuiz"`
	Attempts       []domain.Attempt `json:"attempts"`
}

// CatalogService builds per-user views over the quiz catalog and the
// attempt history.
type CatalogService struct {
	quizzes  QuizCatalog
	attempts AttemptStore
	clock    func() time.Time
}

func NewCatalogService(quizzes QuizCatalog, attempts AttemptStore) *CatalogService {
	return &CatalogService{quizzes: quizzes, attempts: attempts, clock: time.Now}
}

// NewCatalogServiceWithClock allows deterministic classification in tests.
func NewCatalogServiceWithClock(quizzes QuizCatalog, attempts AttemptStore, clock func() time.Time) *CatalogService {
	return &CatalogService{quizzes: quizzes, attempts: attempts, clock: clock}
}

// Overview fetches the catalog and the user's attempts concurrently and
// proceeds only once both resolve; a failure in either surfaces as the
// overview failing, never as a silently partial view.
func (s *CatalogService) Overview(ctx context.Context, userID int64) (CatalogOverview, error) {
	var (
		quizzes  []domain.Quiz
		attempts []domain.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quizzes, err = s.quizzes.ListQuizzes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.attempts.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return CatalogOverview{}, err
	}

	byQuiz := make(map[int64]domain.Attempt, len(attempts))
	for _, a := range attempts {
		byQuiz[a.QuizID] = a
	}

	now := s.clock()
	var overview CatalogOverview
	for _, quiz := range quizzes {
		if attempt, ok := byQuiz[quiz.ID]; ok {
			overview.Played = append(overview.Played, PlayedQuiz{Quiz: quiz, Attempt: attempt})
			continue
		}
		switch quiz.StatusAt(now) {
		case domain.StatusActive:
			overview.Active = append(overview.Active, quiz)
		case domain.StatusUpcoming:
			overview.Upcoming = append(overview.Upcoming, quiz)
		case domain.StatusExpired:
			overview.Expired = append(overview.Expired, quiz)
		}
	}
	return overview, nil
}

// Summary computes the dashboard aggregates: attempt count, most recent
// play time, and score keyed by quiz title.
func (s *CatalogService) Summary(ctx context.Context, userID int64) (DashboardSummary, error) {
	var (
		quizzes  []domain.Quiz
		attempts []domain.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quizzes, err = s.quizzes.ListQuizzes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.attempts.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}

	titles := make(map[int64]string, len(quizzes))
	for _, q := range quizzes {
		titles[q.ID] = q.Title
	}

	summary := DashboardSummary{
		TotalAttempted: len(attempts),
		ScoreByQuiz:    make(map[string]int, len(attempts)),
		Attempts:       attempts,
	}
	for _, a := range attempts {
		title, ok := titles[a.QuizID]
		if !ok {
			title = "unknown quiz"
		}
		summary.ScoreByQuiz[title] += a.Score
		if a.PlayedAt.After(summary.LastPlayed) {
			summary.LastPlayed = a.PlayedAt
		}
	}
	return summary, nil
}
