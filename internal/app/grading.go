package app

import (
	"context"

	"quizapp-service/internal/domain"
)

// GradingStrategy turns a complete answer set into a validation result and
// makes sure the attempt record ends up persisted. Two deployments exist:
// local scoring against known correct answers, and remote scoring where a
// validation service is the authority.
type GradingStrategy interface {
	Grade(ctx context.Context, userID, quizID int64, questions []domain.Question, answers map[int64]string) (domain.ValidationResult, error)
}

// AnswerValidator is the validate-and-save contract: grade a submission and
// persist the attempt record in one call.
type AnswerValidator interface {
	ValidateAndSave(ctx context.Context, sub domain.Submission) (domain.ValidationResult, error)
}

// LocalGrader scores answers in-session by exact string comparison against
// each question's correct answer, then upserts the attempt record.
type LocalGrader struct {
	attempts AttemptStore
}

func NewLocalGrader(attempts AttemptStore) *LocalGrader {
	return &LocalGrader{attempts: attempts}
}

func (g *LocalGrader) Grade(ctx context.Context, userID, quizID int64, questions []domain.Question, answers map[int64]string) (domain.ValidationResult, error) {
	result := gradeAnswers(quizID, questions, answers)
	if _, err := g.attempts.Upsert(ctx, userID, quizID, result.Score); err != nil {
		return domain.ValidationResult{}, err
	}
	return result, nil
}

// RemoteGrader hands the full answer map to a validation service and never
// sees correct answers it did not already fetch.
type RemoteGrader struct {
	validator AnswerValidator
}

func NewRemoteGrader(validator AnswerValidator) *RemoteGrader {
	return &RemoteGrader{validator: validator}
}

func (g *RemoteGrader) Grade(ctx context.Context, userID, quizID int64, _ []domain.Question, answers map[int64]string) (domain.ValidationResult, error) {
	return g.validator.ValidateAndSave(ctx, domain.Submission{
		QuizID:  quizID,
		UserID:  userID,
		Answers: answers,
	})
}

// gradeAnswers compares selections to correct answers with exact string
// equality. No normalization, no partial credit: one point per match.
func gradeAnswers(quizID int64, questions []domain.Question, answers map[int64]string) domain.ValidationResult {
	result := domain.ValidationResult{
		QuizID:         quizID,
		TotalQuestions: len(questions),
		Feedback:       make([]domain.QuestionFeedback, 0, len(questions)),
	}
	for _, q := range questions {
		selected := answers[q.ID]
		correct := selected == q.Answer
		if correct {
			result.Score++
			result.CorrectAnswers = append(result.CorrectAnswers, q.ID)
		}
		result.Feedback = append(result.Feedback, domain.QuestionFeedback{
			QuestionID:    q.ID,
			UserAnswer:    selected,
			CorrectAnswer: q.Answer,
			IsCorrect:     correct,
		})
	}
	return result
}
