package memory

import (
	"context"
	"sort"
	"sync"

	"quizapp-service/internal/domain"
)

// StaticStore serves a catalog and question sets from memory, useful for
// tests, demos, and running the server without Postgres. It accepts writes
// so the admin endpoints work in that mode too.
type StaticStore struct {
	mu        sync.RWMutex
	quizzes   map[int64]domain.Quiz
	questions map[int64][]domain.Question
}

func NewStaticStore(quizzes []domain.Quiz, questions map[int64][]domain.Question) *StaticStore {
	byID := make(map[int64]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}
	if questions == nil {
		questions = make(map[int64][]domain.Question)
	}
	return &StaticStore{quizzes: byID, questions: questions}
}

func (s *StaticStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *StaticStore) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *StaticStore) LoadQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return nil, domain.ErrQuizNotFound
	}
	return s.questions[quizID], nil
}

// QuestionsByQuiz lets the store double as a question source without a
// cache in front of it.
func (s *StaticStore) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	return s.LoadQuestions(ctx, quizID)
}

// CreateQuiz adds a catalog entry, assigning the next free ID when the quiz
// carries none.
func (s *StaticStore) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.EndDate.Before(quiz.StartDate) {
		return domain.Quiz{}, domain.ErrInvalidDates
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz.ID == 0 {
		quiz.ID = 1
		for id := range s.quizzes {
			if id >= quiz.ID {
				quiz.ID = id + 1
			}
		}
	}
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

// AddQuestion attaches a question to an existing quiz.
func (s *StaticStore) AddQuestion(_ context.Context, quizID int64, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	if q.ID == 0 {
		q.ID = 1
		for _, set := range s.questions {
			for _, existing := range set {
				if existing.ID >= q.ID {
					q.ID = existing.ID + 1
				}
			}
		}
	}
	s.questions[quizID] = append(s.questions[quizID], q)
	return q, nil
}
