package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

// message is one client frame on the preview socket, e.g.
// {"action":"set","data":{"name":"region","value":"eu-west"}}
type message struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// parseMessage decodes a client frame; a missing data object becomes an
// empty map
func parseMessage(data []byte) (message, error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Data == nil {
		msg.Data = make(map[string]any)
	}
	return msg, nil
}

// getString extracts a string field from the frame data
func (m message) getString(key string) string {
	if v, ok := m.Data[key].(string); ok {
		return v
	}
	return ""
}

// has reports whether the frame data carries a key
func (m message) has(key string) bool {
	_, ok := m.Data[key]
	return ok
}

// update is one server frame pushed after a re-render
type update struct {
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// writeUpdate pushes an update frame to a connection
func writeUpdate(conn *Connection, u update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}
	return conn.Send(websocket.TextMessage, data)
}
