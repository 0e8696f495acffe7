package app

import (
	"context"
	"fmt"

	"quizapp-service/internal/domain"
)

// ValidationService is the server-side validate-and-save use case: load the
// quiz's questions, grade the submission, persist the attempt record, and
// return the score with per-question feedback.
type ValidationService struct {
	questions QuestionSource
	attempts  AttemptStore
}

func NewValidationService(questions QuestionSource, attempts AttemptStore) *ValidationService {
	return &ValidationService{questions: questions, attempts: attempts}
}

func (s *ValidationService) ValidateAndSave(ctx context.Context, sub domain.Submission) (domain.ValidationResult, error) {
	questions, err := s.questions.QuestionsByQuiz(ctx, sub.QuizID)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return domain.ValidationResult{}, domain.ErrNoQuestions
	}

	result := gradeAnswers(sub.QuizID, questions, sub.Answers)
	if _, err := s.attempts.Upsert(ctx, sub.UserID, sub.QuizID, result.Score); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("save attempt: %w", err)
	}
	return result, nil
}
