package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quizapp-service/internal/app"
	"quizapp-service/internal/domain"
	"quizapp-service/internal/infra/memory"
)

func newWSServer(t *testing.T) (*httptest.Server, *memory.AttemptStore) {
	t.Helper()
	store := memory.NewStaticStore(fixtureQuizzes(), fixtureQuestions())
	attempts := memory.NewAttemptStore()
	grader := app.NewLocalGrader(attempts)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	handler := NewWSHandler(func(userID, quizID int64) *app.Session {
		return app.NewSession(userID, quizID, store, attempts, grader)
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/quiz", handler.ServeWS)
	return httptest.NewServer(mux), attempts
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/quiz?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	server, attempts := newWSServer(t)
	defer server.Close()

	conn := dialWS(t, server, "quizId=1&userId=7")
	defer conn.Close()

	msgType, payload := readNext(t, conn)
	if msgType != "questions" {
		t.Fatalf("expected questions first, got %s", msgType)
	}
	var loaded struct {
		Questions []struct {
			QuestionID int64    `json:"questionId"`
			Text       string   `json:"text"`
			Options    []string `json:"options"`
		} `json:"questions"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(payload, &loaded); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(loaded.Questions) != 2 || loaded.State != "InProgress" {
		t.Fatalf("unexpected load payload: %s", string(payload))
	}
	if len(loaded.Questions[0].Options) != 4 {
		t.Fatalf("expected 4 options, got %v", loaded.Questions[0].Options)
	}

	// Submitting before answering everything is rejected.
	sendMessage(t, conn, "submit", nil)
	msgType, _ = readNext(t, conn)
	if msgType != "error" {
		t.Fatalf("expected error for incomplete submit, got %s", msgType)
	}

	sendMessage(t, conn, "select", map[string]any{"questionId": 1, "option": "Paris"})
	if msgType, _ = readNext(t, conn); msgType != "selected" {
		t.Fatalf("expected selected ack, got %s", msgType)
	}
	sendMessage(t, conn, "select", map[string]any{"questionId": 2, "option": "4"})
	if msgType, _ = readNext(t, conn); msgType != "selected" {
		t.Fatalf("expected selected ack, got %s", msgType)
	}

	sendMessage(t, conn, "submit", nil)
	msgType, payload = readNext(t, conn)
	if msgType != "result" {
		t.Fatalf("expected result, got %s: %s", msgType, string(payload))
	}
	var result domain.ValidationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 2 || result.TotalQuestions != 2 {
		t.Fatalf("expected 2/2, got %+v", result)
	}

	stored, err := attempts.Find(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("expected attempt persisted: %v", err)
	}
	if stored.Score != 2 {
		t.Fatalf("expected stored score 2, got %d", stored.Score)
	}
}

func TestWebSocketSelectValidation(t *testing.T) {
	server, _ := newWSServer(t)
	defer server.Close()

	conn := dialWS(t, server, "quizId=1&userId=7")
	defer conn.Close()

	if msgType, _ := readNext(t, conn); msgType != "questions" {
		t.Fatalf("expected questions, got %s", msgType)
	}

	sendMessage(t, conn, "select", map[string]any{"questionId": 99, "option": "Paris"})
	if msgType, _ := readNext(t, conn); msgType != "error" {
		t.Fatalf("expected error for unknown question, got %s", msgType)
	}

	sendMessage(t, conn, "select", map[string]any{"questionId": 1, "option": "Tokyo"})
	if msgType, _ := readNext(t, conn); msgType != "error" {
		t.Fatalf("expected error for foreign option, got %s", msgType)
	}
}

func TestWebSocketResetStartsFresh(t *testing.T) {
	server, _ := newWSServer(t)
	defer server.Close()

	conn := dialWS(t, server, "quizId=1&userId=7")
	defer conn.Close()

	if msgType, _ := readNext(t, conn); msgType != "questions" {
		t.Fatalf("expected questions, got %s", msgType)
	}

	sendMessage(t, conn, "select", map[string]any{"questionId": 1, "option": "Paris"})
	readNext(t, conn)
	sendMessage(t, conn, "select", map[string]any{"questionId": 2, "option": "4"})
	readNext(t, conn)
	sendMessage(t, conn, "submit", nil)
	if msgType, _ := readNext(t, conn); msgType != "result" {
		t.Fatalf("expected result, got %s", msgType)
	}

	// Reset re-sends questions and surfaces the prior score.
	sendMessage(t, conn, "reset", nil)
	msgType, payload := readNext(t, conn)
	if msgType != "questions" {
		t.Fatalf("expected questions after reset, got %s", msgType)
	}
	var loaded struct {
		PriorScore *int   `json:"priorScore"`
		State      string `json:"state"`
	}
	if err := json.Unmarshal(payload, &loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.State != "InProgress" {
		t.Fatalf("expected InProgress after reset, got %s", loaded.State)
	}
	if loaded.PriorScore == nil || *loaded.PriorScore != 2 {
		t.Fatalf("expected prior score 2 after reset, got %v", loaded.PriorScore)
	}
}

func TestWebSocketRejectsBadQuery(t *testing.T) {
	server, _ := newWSServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws/quiz?quizId=abc&userId=7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad quizId, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownQuizFailsStart(t *testing.T) {
	server, _ := newWSServer(t)
	defer server.Close()

	conn := dialWS(t, server, "quizId=99&userId=7")
	defer conn.Close()

	msgType, _ := readNext(t, conn)
	if msgType != "error" {
		t.Fatalf("expected error for unknown quiz, got %s", msgType)
	}
}
