package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"quizapp-service/internal/app"
	"quizapp-service/internal/domain"
)

// APIHandler exposes the quiz catalog, question sets, attempt records, and
// validate-and-save grading over REST.
type APIHandler struct {
	catalog   app.QuizCatalog
	questions app.QuestionSource
	attempts  app.AttemptStore
	validator app.AnswerValidator
	overview  *app.CatalogService
	admin     app.CatalogAdmin
	log       *logrus.Logger
	validate  *validator.Validate
	clock     func() time.Time
}

func NewAPIHandler(catalog app.QuizCatalog, questions app.QuestionSource, attempts app.AttemptStore, answerValidator app.AnswerValidator, overview *app.CatalogService, log *logrus.Logger) *APIHandler {
	return &APIHandler{
		catalog:   catalog,
		questions: questions,
		attempts:  attempts,
		validator: answerValidator,
		overview:  overview,
		log:       log,
		validate:  validator.New(),
		clock:     time.Now,
	}
}

// EnableAdmin turns on the catalog write endpoints. Call before Register.
func (h *APIHandler) EnableAdmin(admin app.CatalogAdmin) {
	h.admin = admin
}

// Register wires all routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("GET /quizzes/{quizId}", h.getQuiz)
	mux.HandleFunc("GET /quizzes/overview/user/{userId}", h.catalogOverview)
	mux.HandleFunc("GET /quiz-questions/quiz/{quizId}", h.quizQuestions)
	mux.HandleFunc("GET /user-records/user/{userId}", h.recordsByUser)
	mux.HandleFunc("GET /user-records/user/{userId}/quiz/{quizId}", h.recordByUserAndQuiz)
	mux.HandleFunc("GET /user-records/user/{userId}/summary", h.userSummary)
	mux.HandleFunc("GET /user-records/played-between", h.recordsPlayedBetween)
	mux.HandleFunc("POST /user-records", h.upsertRecord)
	mux.HandleFunc("POST /user-records/submit-quiz", h.submitQuiz)
	mux.HandleFunc("POST /quiz-validation/validate-and-save", h.validateAndSave)
	if h.admin != nil {
		mux.HandleFunc("POST /quizzes", h.createQuiz)
		mux.HandleFunc("POST /quiz-questions/quiz/{quizId}", h.addQuestion)
	}
}

type createQuizRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
}

func (h *APIHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("cannot parse JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid startDate"))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid endDate"))
		return
	}

	quiz, err := h.admin.CreateQuiz(r.Context(), domain.Quiz{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if errors.Is(err, domain.ErrInvalidDates) {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	quiz.Status = quiz.StatusAt(h.clock())
	h.writeJSON(w, http.StatusCreated, quiz)
}

type addQuestionRequest struct {
	Text             string   `json:"text" validate:"required"`
	Answer           string   `json:"answer" validate:"required"`
	IncorrectAnswers []string `json:"incorrectAnswers" validate:"required,min=1"`
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := h.pathID(w, r, "quizId")
	if !ok {
		return
	}
	var req addQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("cannot parse JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	question, err := h.admin.AddQuestion(r.Context(), quizID, domain.Question{
		Text:             req.Text,
		Answer:           req.Answer,
		IncorrectAnswers: req.IncorrectAnswers,
	})
	if errors.Is(err, domain.ErrQuizNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, question)
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	now := h.clock()
	for i := range quizzes {
		quizzes[i].Status = quizzes[i].StatusAt(now)
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *APIHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := h.pathID(w, r, "quizId")
	if !ok {
		return
	}
	quiz, err := h.catalog.GetQuiz(r.Context(), quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	quiz.Status = quiz.StatusAt(h.clock())
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *APIHandler) catalogOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	overview, err := h.overview.Overview(r.Context(), userID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// quizQuestions keeps the original wire shape: a list of wrappers each
// holding a question.
func (h *APIHandler) quizQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, ok := h.pathID(w, r, "quizId")
	if !ok {
		return
	}
	questions, err := h.questions.QuestionsByQuiz(r.Context(), quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	type wrapper struct {
		Question domain.Question `json:"question"`
	}
	out := make([]wrapper, 0, len(questions))
	for _, q := range questions {
		out = append(out, wrapper{Question: q})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) recordsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	attempts, err := h.attempts.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	h.writeJSON(w, http.StatusOK, attempts)
}

func (h *APIHandler) recordByUserAndQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizId")
	if !ok {
		return
	}
	attempt, err := h.attempts.Find(r.Context(), userID, quizID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

func (h *APIHandler) userSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	summary, err := h.overview.Summary(r.Context(), userID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) recordsPlayedBetween(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimestamp(r.URL.Query().Get("startDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid startDate"))
		return
	}
	end, err := parseTimestamp(r.URL.Query().Get("endDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid endDate"))
		return
	}
	attempts, err := h.attempts.ListPlayedBetween(r.Context(), start, end)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	h.writeJSON(w, http.StatusOK, attempts)
}

type upsertRecordRequest struct {
	UserID int64 `json:"userId" validate:"required"`
	QuizID int64 `json:"quizId" validate:"required"`
	Score  *int  `json:"score" validate:"required,gte=0"`
}

func (h *APIHandler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	var req upsertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("cannot parse JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	attempt, err := h.attempts.Upsert(r.Context(), req.UserID, req.QuizID, *req.Score)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

// submitQuiz is the query-parameter upsert form.
func (h *APIHandler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid userId"))
		return
	}
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid quizId"))
		return
	}
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil || score < 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid score"))
		return
	}
	attempt, err := h.attempts.Upsert(r.Context(), userID, quizID, score)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

type submissionRequest struct {
	QuizID  int64            `json:"quizId" validate:"required"`
	UserID  int64            `json:"userId" validate:"required"`
	Answers map[int64]string `json:"answers" validate:"required,min=1"`
}

func (h *APIHandler) validateAndSave(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("cannot parse JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.validator.ValidateAndSave(r.Context(), domain.Submission{
		QuizID:  req.QuizID,
		UserID:  req.UserID,
		Answers: req.Answers,
	})
	if errors.Is(err, domain.ErrNoQuestions) || errors.Is(err, domain.ErrQuizNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("encode response")
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseTimestamp accepts RFC 3339 or a bare local date-time.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
