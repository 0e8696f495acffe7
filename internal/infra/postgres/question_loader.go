package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizapp-service/internal/domain"
)

// QuestionLoader loads question sets from Postgres. Incorrect answers are
// stored as a JSONB array; the correct answer lives in its own column.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT question_id, text, answer, incorrect_answers FROM questions WHERE quiz_id=$1 ORDER BY question_id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Answer, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &q.IncorrectAnswers); err != nil {
				return nil, fmt.Errorf("unmarshal incorrect answers: %w", err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddQuestion attaches a question to a quiz.
func (l *QuestionLoader) AddQuestion(ctx context.Context, quizID int64, q domain.Question) (domain.Question, error) {
	raw, err := json.Marshal(q.IncorrectAnswers)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal incorrect answers: %w", err)
	}
	err = l.pool.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, text, answer, incorrect_answers) VALUES ($1, $2, $3, $4::jsonb) RETURNING question_id`,
		quizID, q.Text, q.Answer, string(raw)).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	return q, nil
}
