package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"quizapp-service/internal/domain"
)

// QuestionSource loads a quiz's question set (from DB, cache, or a remote
// deployment).
type QuestionSource interface {
	QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// AttemptStore persists at most one attempt record per (user, quiz) pair.
// Find returns domain.ErrAttemptNotFound when no record exists; callers
// treat that as "no prior attempt", not a failure.
type AttemptStore interface {
	Find(ctx context.Context, userID, quizID int64) (domain.Attempt, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Attempt, error)
	ListPlayedBetween(ctx context.Context, start, end time.Time) ([]domain.Attempt, error)
	Upsert(ctx context.Context, userID, quizID int64, score int) (domain.Attempt, error)
}

// SessionState tracks where one quiz attempt is in its lifecycle.
type SessionState int

const (
	StateLoading SessionState = iota
	StateInProgress
	StateSubmitted
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateInProgress:
		return "InProgress"
	case StateSubmitted:
		return "Submitted"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Session drives one user's attempt at one quiz: load questions, collect
// answers, submit for grading, expose the result. Each attempt owns its own
// Session; all mutation happens through sequential calls on a single logical
// thread, so there is no internal locking.
type Session struct {
	userID int64
	quizID int64

	questions QuestionSource
	attempts  AttemptStore
	grader    GradingStrategy
	shuffler  *OptionShuffler

	state   SessionState
	loaded  []domain.Question
	order   map[int64][]string
	answers map[int64]string
	prior   *domain.Attempt
	result  *domain.ValidationResult
	loadErr error
}

// NewSession wires a session for the given user and quiz. The user is an
// explicit dependency; sessions never read identity from ambient state.
func NewSession(userID, quizID int64, questions QuestionSource, attempts AttemptStore, grader GradingStrategy) *Session {
	return NewSessionWithShuffler(userID, quizID, questions, attempts, grader, NewOptionShuffler())
}

// NewSessionWithShuffler is for tests that need deterministic option orders.
func NewSessionWithShuffler(userID, quizID int64, questions QuestionSource, attempts AttemptStore, grader GradingStrategy, shuffler *OptionShuffler) *Session {
	return &Session{
		userID:    userID,
		quizID:    quizID,
		questions: questions,
		attempts:  attempts,
		grader:    grader,
		shuffler:  shuffler,
		state:     StateLoading,
		order:     make(map[int64][]string),
		answers:   make(map[int64]string),
	}
}

// Start fetches the question set and the user's prior attempt concurrently
// and shuffles each question's options exactly once. An empty or failed
// question fetch moves the session to Failed; a missing prior attempt does
// not.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateLoading {
		return s.fail(errors.New("session already started"))
	}

	var (
		loaded []domain.Question
		prior  *domain.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := s.questions.QuestionsByQuiz(gctx, s.quizID)
		if err != nil {
			return err
		}
		loaded = qs
		return nil
	})
	if s.attempts != nil {
		g.Go(func() error {
			attempt, err := s.attempts.Find(gctx, s.userID, s.quizID)
			if errors.Is(err, domain.ErrAttemptNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			prior = &attempt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(err)
	}
	if len(loaded) == 0 {
		return s.fail(domain.ErrNoQuestions)
	}

	s.loaded = loaded
	s.prior = prior
	for _, q := range loaded {
		s.order[q.ID] = s.shuffler.Shuffle(q.AllOptions())
	}
	s.state = StateInProgress
	return nil
}

// Select records the user's pick for a question, overwriting any earlier
// pick. Only the latest selection per question counts.
func (s *Session) Select(questionID int64, option string) error {
	if s.state != StateInProgress {
		return errors.New("session not accepting answers")
	}
	opts, ok := s.order[questionID]
	if !ok {
		return domain.ErrUnknownQuestion
	}
	for _, o := range opts {
		if o == option {
			s.answers[questionID] = option
			return nil
		}
	}
	return errors.New("option not part of this question")
}

// Submit grades the collected answers. Submissions with unanswered
// questions are rejected locally before any store or network interaction,
// and the session stays InProgress. A grading failure also leaves the
// session InProgress with answers preserved, so the user can retry.
func (s *Session) Submit(ctx context.Context) (domain.ValidationResult, error) {
	if s.state != StateInProgress {
		return domain.ValidationResult{}, errors.New("nothing to submit")
	}
	if len(s.Unanswered()) > 0 {
		return domain.ValidationResult{}, domain.ErrIncompleteAnswers
	}

	answers := make(map[int64]string, len(s.answers))
	for id, opt := range s.answers {
		answers[id] = opt
	}
	result, err := s.grader.Grade(ctx, s.userID, s.quizID, s.loaded, answers)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	s.result = &result
	s.state = StateSubmitted
	return result, nil
}

// Reset is the explicit retake operation: it clears answers, shuffle orders,
// and the score, then re-runs the loading transition so questions are
// re-fetched and re-shuffled.
func (s *Session) Reset(ctx context.Context) error {
	s.state = StateLoading
	s.loaded = nil
	s.order = make(map[int64][]string)
	s.answers = make(map[int64]string)
	s.prior = nil
	s.result = nil
	s.loadErr = nil
	return s.Start(ctx)
}

// State reports the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Err returns the load failure when the session is Failed.
func (s *Session) Err() error { return s.loadErr }

// Questions returns the loaded question set in canonical order.
func (s *Session) Questions() []domain.Question {
	out := make([]domain.Question, len(s.loaded))
	copy(out, s.loaded)
	return out
}

// Options returns the shuffled option order for a question. The order is
// stable for the lifetime of the load.
func (s *Session) Options(questionID int64) []string {
	opts, ok := s.order[questionID]
	if !ok {
		return nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// Selected returns the user's current pick for a question, if any.
func (s *Session) Selected(questionID int64) (string, bool) {
	opt, ok := s.answers[questionID]
	return opt, ok
}

// Unanswered lists questions without a selection, in canonical order.
func (s *Session) Unanswered() []int64 {
	var missing []int64
	for _, q := range s.loaded {
		if _, ok := s.answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// Prior returns the attempt record that existed before this load, if any.
func (s *Session) Prior() (domain.Attempt, bool) {
	if s.prior == nil {
		return domain.Attempt{}, false
	}
	return *s.prior, true
}

// Result returns the grading outcome once the session is Submitted.
func (s *Session) Result() (domain.ValidationResult, bool) {
	if s.result == nil {
		return domain.ValidationResult{}, false
	}
	return *s.result, true
}

// Score returns the submitted score. The second return is false until the
// session reaches Submitted; once it is true the session is terminal until
// Reset.
func (s *Session) Score() (int, bool) {
	if s.result == nil {
		return 0, false
	}
	return s.result.Score, true
}

func (s *Session) fail(err error) error {
	s.state = StateFailed
	s.loadErr = err
	return err
}
