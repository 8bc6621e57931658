package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// dial spins up a server whose handler gets the upgraded server-side
// connection, and returns both ends.
func dial(t *testing.T, serve func(*websocket.Conn)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWriteError_Frame(t *testing.T) {
	done := make(chan struct{})
	client := dial(t, func(conn *websocket.Conn) {
		if err := WriteError(conn, "EXAM_NOT_AVAILABLE", "exam is not open"); err != nil {
			t.Errorf("WriteError: %v", err)
		}
		<-done
	})
	defer close(done)

	var frame ErrorResponse
	if err := client.ReadJSON(&frame); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if frame.Event != EventError {
		t.Errorf("event = %q, want %q", frame.Event, EventError)
	}
	if frame.Code != "EXAM_NOT_AVAILABLE" || frame.Error != "exam is not open" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestRead_ReturnsRawPayload(t *testing.T) {
	payload := `{"action":"answer","index":3,"answer":"4"}`
	got := make(chan []byte, 1)

	client := dial(t, func(conn *websocket.Conn) {
		data, err := Read(conn)
		if err != nil {
			t.Errorf("Read: %v", err)
			return
		}
		got <- data
	})

	if err := client.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	data := <-got
	if string(data) != payload {
		t.Fatalf("payload = %s, want %s", data, payload)
	}

	// The same bytes decode as envelope first, then as the action body.
	var envelope RequestEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if envelope.Action != ActionAnswer {
		t.Errorf("action = %q, want %q", envelope.Action, ActionAnswer)
	}
	var req AnswerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("answer body: %v", err)
	}
	if req.Index != 3 || req.Answer != "4" {
		t.Errorf("req = %+v", req)
	}
}
