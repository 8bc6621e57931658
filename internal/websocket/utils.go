package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds how long a single frame write may block.
	writeWait = 10 * time.Second
	// idleWait disconnects a student who sends nothing for this long.
	// Clients ping well inside this window.
	idleWait = 5 * time.Minute
)

// WriteTyped sends one event frame with a write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends an error event frame.
func WriteError(conn *websocket.Conn, code, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// Read blocks for the next client frame and returns its raw payload, so
// the caller can decode the action envelope and then the action-specific
// body from the same bytes.
func Read(conn *websocket.Conn) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(idleWait))
	_, data, err := conn.ReadMessage()
	return data, err
}
