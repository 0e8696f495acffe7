package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quizapp-service/internal/app"
	"quizapp-service/internal/domain"
)

// SessionFactory builds a quiz session for one user and quiz; the server
// decides which grading strategy backs it.
type SessionFactory func(userID, quizID int64) *app.Session

// WSHandler drives a quiz attempt over a websocket: one connection owns one
// session, so all session mutation stays on a single logical thread.
type WSHandler struct {
	newSession SessionFactory
	log        *logrus.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(newSession SessionFactory, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		newSession: newSession,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID int64  `json:"questionId"`
	Option     string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is what clients see before submitting: shuffled options,
// never the correct answer.
type questionView struct {
	QuestionID int64    `json:"questionId"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
}

type loadedPayload struct {
	Questions  []questionView `json:"questions"`
	PriorScore *int           `json:"priorScore,omitempty"`
	State      string         `json:"state"`
}

// ServeWS upgrades the request and runs one quiz attempt over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid quizId", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	session := h.newSession(userID, quizID)
	if err := session.Start(r.Context()); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	h.sendQuestions(conn, session)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid select payload")
				continue
			}
			if err := session.Select(payload.QuestionID, payload.Option); err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[selectPayload]{Type: "selected", Payload: payload})
		case "submit":
			result, err := session.Submit(r.Context())
			if errors.Is(err, domain.ErrIncompleteAnswers) {
				h.sendError(conn, err.Error())
				continue
			}
			if err != nil {
				// Answers are preserved; the client may retry submit.
				h.sendError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[domain.ValidationResult]{Type: "result", Payload: result})
		case "reset":
			if err := session.Reset(r.Context()); err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.sendQuestions(conn, session)
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) sendQuestions(conn *websocket.Conn, session *app.Session) {
	questions := session.Questions()
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			QuestionID: q.ID,
			Text:       q.Text,
			Options:    session.Options(q.ID),
		})
	}
	payload := loadedPayload{Questions: views, State: session.State().String()}
	if prior, ok := session.Prior(); ok {
		score := prior.Score
		payload.PriorScore = &score
	}
	_ = conn.WriteJSON(outboundMessage[loadedPayload]{Type: "questions", Payload: payload})
}

func (h *WSHandler) sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}
