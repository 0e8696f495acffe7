package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizapp-service/internal/domain"
)

// Catalog reads quiz metadata from Postgres.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT quiz_id, title, COALESCE(description, ''), start_date, end_date FROM quizzes ORDER BY quiz_id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var quiz domain.Quiz
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.StartDate, &quiz.EndDate); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.pool.QueryRow(ctx,
		`SELECT quiz_id, title, COALESCE(description, ''), start_date, end_date FROM quizzes WHERE quiz_id=$1`,
		quizID).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.StartDate, &quiz.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

// CreateQuiz inserts a catalog entry. The end date must not precede the
// start date.
func (c *Catalog) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.EndDate.Before(quiz.StartDate) {
		return domain.Quiz{}, domain.ErrInvalidDates
	}
	err := c.pool.QueryRow(ctx,
		`INSERT INTO quizzes (title, description, start_date, end_date) VALUES ($1, $2, $3, $4) RETURNING quiz_id`,
		quiz.Title, quiz.Description, quiz.StartDate, quiz.EndDate).Scan(&quiz.ID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}
