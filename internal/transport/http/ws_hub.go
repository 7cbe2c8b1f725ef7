package http

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quiz-exam-service/internal/domain"
)

// EventHub is the websocket implementation of notify.Notifier. Clients
// subscribe to class and/or quiz rooms via query params; events are
// fanned out as typed JSON messages. Delivery is best-effort: a slow
// client drops its oldest pending event rather than blocking the hub.
type EventHub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*hubClient]struct{}
}

type hubClient struct {
	send chan event
}

type event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func NewEventHub() *EventHub {
	return &EventHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: make(map[string]map[*hubClient]struct{}),
	}
}

// ServeWS upgrades the request and parks the connection in its rooms
// until the client disconnects.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var rooms []string
	if classID := r.URL.Query().Get("classId"); classID != "" {
		rooms = append(rooms, classRoom(classID))
	}
	if quizID := r.URL.Query().Get("quizId"); quizID != "" {
		rooms = append(rooms, quizRoom(quizID))
	}
	if len(rooms) == 0 {
		http.Error(w, "missing classId or quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	client := &hubClient{send: make(chan event, 16)}
	h.join(client, rooms)
	defer h.leave(client, rooms)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range client.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The feed is broadcast-only; the read loop exists to notice the
	// client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.leave(client, rooms)
	close(client.send)
	<-writerDone
}

func (h *EventHub) ExamStarted(_ context.Context, window domain.ExamWindow) error {
	h.broadcast(quizRoom(window.QuizID), event{Type: "examStarted", Payload: window})
	return nil
}

func (h *EventHub) ExamEnded(_ context.Context, quizID string) error {
	h.broadcast(quizRoom(quizID), event{Type: "examEnded", Payload: map[string]string{"quizId": quizID}})
	return nil
}

func (h *EventHub) ExamExpired(_ context.Context, quizID string) error {
	h.broadcast(quizRoom(quizID), event{Type: "examExpired", Payload: map[string]string{"quizId": quizID}})
	return nil
}

func (h *EventHub) SubmissionScored(_ context.Context, classID string, result domain.QuizResult) error {
	// Only the public slice of the result goes out; answer details stay
	// between the student and the grading response.
	h.broadcast(classRoom(classID), event{Type: "submissionScored", Payload: map[string]any{
		"quizId":     result.QuizID,
		"studentId":  result.StudentID,
		"score":      result.Score,
		"percentage": result.Percentage,
	}})
	return nil
}

func (h *EventHub) RankingsChanged(_ context.Context, classID string, rankings domain.ClassRankings) error {
	h.broadcast(classRoom(classID), event{Type: "rankingsChanged", Payload: rankings})
	return nil
}

func (h *EventHub) join(client *hubClient, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*hubClient]struct{})
			h.rooms[room] = members
		}
		members[client] = struct{}{}
	}
}

func (h *EventHub) leave(client *hubClient, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			continue
		}
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *EventHub) broadcast(room string, msg event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- msg:
		default:
			// Drop the oldest pending event so slow clients never block.
			select {
			case <-client.send:
			default:
			}
			select {
			case client.send <- msg:
			default:
			}
		}
	}
}

func classRoom(classID string) string { return "class:" + classID }
func quizRoom(quizID string) string   { return "quiz:" + quizID }
