package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-exam-service/internal/domain"
)

func TestEventHubBroadcastsToRooms(t *testing.T) {
	hub := NewEventHub()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?classId=class-1&quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server loop a beat to park the client in its rooms.
	waitForRooms(t, hub, 2)

	window := domain.ExamWindow{QuizID: "quiz-1", StartTime: time.Now(), EndTime: time.Now().Add(time.Minute)}
	if err := hub.ExamStarted(context.Background(), window); err != nil {
		t.Fatalf("exam started: %v", err)
	}
	if typ := readEventType(t, conn); typ != "examStarted" {
		t.Fatalf("expected examStarted, got %s", typ)
	}

	if err := hub.RankingsChanged(context.Background(), "class-1", domain.ClassRankings{ClassID: "class-1"}); err != nil {
		t.Fatalf("rankings changed: %v", err)
	}
	if typ := readEventType(t, conn); typ != "rankingsChanged" {
		t.Fatalf("expected rankingsChanged, got %s", typ)
	}

	// Events for other rooms are not delivered.
	if err := hub.ExamEnded(context.Background(), "quiz-other"); err != nil {
		t.Fatalf("exam ended: %v", err)
	}
	if err := hub.ExamExpired(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("exam expired: %v", err)
	}
	if typ := readEventType(t, conn); typ != "examExpired" {
		t.Fatalf("expected examExpired next, got %s", typ)
	}
}

func TestEventHubRequiresRoom(t *testing.T) {
	hub := NewEventHub()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	hub.ServeWS(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without rooms, got %d", rec.Code)
	}
}

func readEventType(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type
}

func waitForRooms(t *testing.T, hub *EventHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.rooms)
		hub.mu.RUnlock()
		if got >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client never joined its rooms")
}
