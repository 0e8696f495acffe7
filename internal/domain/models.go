package domain

import "time"

// Status is the temporal state of a quiz relative to its play window.
type Status string

const (
	StatusActive   Status = "Active"
	StatusUpcoming Status = "Upcoming"
	StatusExpired  Status = "Expired"
)

// Quiz is a catalog entry. Start and end dates are date-granular: a quiz is
// playable on its end date but not after it.
type Quiz struct {
	ID          int64     `json:"quizId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	// Status, when set by the backend, is authoritative. Empty means derive
	// it from the dates.
	Status Status `json:"status,omitempty"`
}

// StatusAt classifies the quiz at the given instant. A backend-supplied
// status wins over date derivation.
func (q Quiz) StatusAt(now time.Time) Status {
	if q.Status != "" {
		return q.Status
	}
	return ClassifyStatus(q.StartDate, q.EndDate, now)
}

// Playable reports whether the quiz exposes a play action at the given time.
func (q Quiz) Playable(now time.Time) bool {
	return q.StatusAt(now) == StatusActive
}

// ClassifyStatus buckets a play window against now, comparing whole days so
// that both boundary dates count as active.
func ClassifyStatus(start, end, now time.Time) Status {
	today := truncateToDay(now)
	switch {
	case today.Before(truncateToDay(start)):
		return StatusUpcoming
	case today.After(truncateToDay(end)):
		return StatusExpired
	default:
		return StatusActive
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Question is a multiple-choice question with exactly one correct answer.
// Depending on the backend shape either Options arrives pre-merged, or the
// list has to be rebuilt from IncorrectAnswers plus Answer.
type Question struct {
	ID               int64    `json:"questionId"`
	Text             string   `json:"text"`
	Answer           string   `json:"answer"`
	IncorrectAnswers []string `json:"incorrectAnswers,omitempty"`
	Options          []string `json:"options,omitempty"`
}

// AllOptions returns the unified option list as a fresh slice. When the
// backend did not pre-merge options, the correct answer goes last, matching
// the wire shape shufflers receive.
func (q Question) AllOptions() []string {
	if len(q.Options) > 0 {
		out := make([]string, len(q.Options))
		copy(out, q.Options)
		return out
	}
	out := make([]string, 0, len(q.IncorrectAnswers)+1)
	out = append(out, q.IncorrectAnswers...)
	return append(out, q.Answer)
}

// Attempt is the persisted per-(user, quiz) play record. At most one live
// record exists per pair; resubmission updates it in place.
type Attempt struct {
	ID       string    `json:"userRecordId"`
	UserID   int64     `json:"userId"`
	QuizID   int64     `json:"quizId"`
	Score    int       `json:"score"`
	PlayedAt time.Time `json:"playedAt"`
}

// QuestionFeedback is the per-question grading outcome of a submission.
type QuestionFeedback struct {
	QuestionID    int64  `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ValidationResult is what grading a submission produces. Feedback is
// ephemeral: it lives in session memory and is never persisted.
type ValidationResult struct {
	QuizID         int64              `json:"quizId"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"totalQuestions"`
	CorrectAnswers []int64            `json:"correctAnswers"`
	Feedback       []QuestionFeedback `json:"feedback"`
}

// Submission carries a full answer set for grading: question ID mapped to
// the option string the user picked.
type Submission struct {
	QuizID  int64            `json:"quizId"`
	UserID  int64            `json:"userId"`
	Answers map[int64]string `json:"answers"`
}
