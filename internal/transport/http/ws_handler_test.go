package http

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPlayerSocketPull(t *testing.T) {
	server := newTestServer(t)

	var started startGameResponse
	doJSON(t, http.MethodPost, server.URL+"/quizzes/quiz-1/games", nil, &started)
	var joined joinResponse
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/games/%d/players", server.URL, started.GameID), joinRequest{Name: "Alice"}, &joined)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + fmt.Sprintf("/players/%d/ws", joined.PlayerID)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	typ, payload := readNext(t, conn)
	if typ != "status" || payload["state"] != "LOBBY" {
		t.Fatalf("expected LOBBY status, got %s %v", typ, payload)
	}

	answer := map[string]any{"type": "answer", "payload": map[string]any{"position": 1, "answerIds": []string{"o2"}}}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	typ, payload = readNext(t, conn)
	if typ != "error" || payload["error"] != "WrongPhase" {
		t.Fatalf("expected WrongPhase error, got %s %v", typ, payload)
	}

	for _, action := range []string{"NEXT_QUESTION", "SKIP_COUNTDOWN"} {
		doJSON(t, http.MethodPut, fmt.Sprintf("%s/games/%d/action", server.URL, started.GameID), actionRequest{Action: action}, nil)
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	typ, payload = readNext(t, conn)
	if typ != "status" || payload["state"] != "QUESTION_OPEN" {
		t.Fatalf("expected QUESTION_OPEN status, got %s %v", typ, payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "shout"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	if typ, _ := readNext(t, conn); typ != "error" {
		t.Fatalf("expected error for unknown type, got %s", typ)
	}
}

func TestPlayerSocketUnknownPlayer(t *testing.T) {
	server := newTestServer(t)
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/players/77/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %v", resp)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}
