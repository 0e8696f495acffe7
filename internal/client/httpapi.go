package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quizapp-service/internal/domain"
)

// APIError carries the status and message of a failed backend call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to a remote quizapp-service deployment. It implements
// the catalog, question-source, attempt-store, and validator interfaces, so
// sessions and catalog views run unchanged against a remote backend.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/quizzes", nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *HTTPClient) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.doJSON(ctx, http.MethodGet, "/quizzes/"+formatID(quizID), nil, &quiz)
	if isNotFound(err) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, err
}

func (c *HTTPClient) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var wrapped []struct {
		Question domain.Question `json:"question"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/quiz-questions/quiz/"+formatID(quizID), nil, &wrapped)
	if isNotFound(err) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(wrapped))
	for _, item := range wrapped {
		questions = append(questions, item.Question)
	}
	return questions, nil
}

func (c *HTTPClient) Find(ctx context.Context, userID, quizID int64) (domain.Attempt, error) {
	var attempt domain.Attempt
	err := c.doJSON(ctx, http.MethodGet, "/user-records/user/"+formatID(userID)+"/quiz/"+formatID(quizID), nil, &attempt)
	if isNotFound(err) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, err
}

func (c *HTTPClient) ListByUser(ctx context.Context, userID int64) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	if err := c.doJSON(ctx, http.MethodGet, "/user-records/user/"+formatID(userID), nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (c *HTTPClient) ListPlayedBetween(ctx context.Context, start, end time.Time) ([]domain.Attempt, error) {
	query := url.Values{}
	query.Set("startDate", start.Format(time.RFC3339))
	query.Set("endDate", end.Format(time.RFC3339))
	var attempts []domain.Attempt
	if err := c.doJSON(ctx, http.MethodGet, "/user-records/played-between?"+query.Encode(), nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (c *HTTPClient) Upsert(ctx context.Context, userID, quizID int64, score int) (domain.Attempt, error) {
	body := map[string]any{
		"userId": userID,
		"quizId": quizID,
		"score":  score,
	}
	var attempt domain.Attempt
	err := c.doJSON(ctx, http.MethodPost, "/user-records", body, &attempt)
	return attempt, err
}

func (c *HTTPClient) ValidateAndSave(ctx context.Context, sub domain.Submission) (domain.ValidationResult, error) {
	var result domain.ValidationResult
	err := c.doJSON(ctx, http.MethodPost, "/quiz-validation/validate-and-save", sub, &result)
	return result, err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
