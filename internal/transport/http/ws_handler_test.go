package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sentence-practice-service/internal/app"
	"sentence-practice-service/internal/domain"
	"sentence-practice-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketPracticeFlow(t *testing.T) {
	store := memory.NewSessionStore()
	setRepo := memory.NewQuestionSetRepository(memory.NewStaticLoader(sampleAssignments()), time.Minute)
	service := app.NewPracticeService(store, setRepo, noopRecorder{}, 1, time.Millisecond)
	defer service.Shutdown()
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?assignmentId=assignment-1&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the initial session snapshot first.
	msgType, payload := readNext(conn, t, "session")
	if msgType != "session" {
		t.Fatalf("expected session, got %s", msgType)
	}
	if payload["assignmentId"] != "assignment-1" {
		t.Fatalf("expected assignmentId in session payload, got %v", payload["assignmentId"])
	}

	// Place every word in the correct order.
	for _, token := range []string{"uno", "dos", "tres"} {
		click := map[string]any{
			"type": "selectWord",
			"payload": map[string]any{
				"contentItemId": "ci-1",
				"token":         token,
			},
		}
		if err := conn.WriteJSON(click); err != nil {
			t.Fatalf("write selectWord: %v", err)
		}
	}

	// Expect question updates, then resolved and sessionComplete.
	resolvedSeen := false
	completeSeen := false
	for i := 0; i < 8; i++ {
		typ, p := readNext(conn, t, "")
		switch typ {
		case "resolved":
			resolvedSeen = true
			if p["finalScore"] != float64(100) {
				t.Fatalf("expected perfect score, got %v", p["finalScore"])
			}
		case "sessionComplete":
			completeSeen = true
		}
		if resolvedSeen && completeSeen {
			break
		}
	}
	if !resolvedSeen || !completeSeen {
		t.Fatalf("expected resolved and sessionComplete, got resolved=%v complete=%v", resolvedSeen, completeSeen)
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	store := memory.NewSessionStore()
	setRepo := memory.NewQuestionSetRepository(memory.NewStaticLoader(sampleAssignments()), time.Minute)
	service := app.NewPracticeService(store, setRepo, noopRecorder{}, 1, time.Millisecond)
	defer service.Shutdown()
	wsHandler := NewWSHandler(service)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?userId=u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

type noopRecorder struct{}

func (noopRecorder) RecordCompletion(context.Context, domain.CompletionRecord, bool) error {
	return nil
}

func (noopRecorder) RecordRetry(context.Context, string, bool) error { return nil }

func sampleAssignments() map[string]domain.QuestionSet {
	q := domain.Question{
		ContentItemID:    "ci-1",
		CorrectSequence:  []string{"uno", "dos", "tres"},
		ShuffledPool:     []string{"tres", "uno", "dos"},
		TimeLimitSeconds: 60,
	}
	q.Normalize()
	return map[string]domain.QuestionSet{
		"assignment-1": {
			AssignmentID:   "assignment-1",
			TotalQuestions: 1,
			Questions:      []domain.Question{q},
		},
	}
}
