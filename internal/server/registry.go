package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Connection is one live preview websocket. Several connections can
// watch the same session (one per open tab); writes to the underlying
// socket are serialized through the connection's mutex.
type Connection struct {
	Conn      *websocket.Conn
	SessionID string
	mu        sync.Mutex
}

// Send writes one message to the socket. Safe for concurrent use.
func (c *Connection) Send(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// ConnectionRegistry tracks live preview connections indexed by session,
// so a variable update can fan out to every tab watching that session
type ConnectionRegistry struct {
	bySession map[string][]*Connection
	mu        sync.RWMutex
}

// NewConnectionRegistry creates an empty registry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		bySession: make(map[string][]*Connection),
	}
}

// Register adds a connection under its session
func (r *ConnectionRegistry) Register(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySession[conn.SessionID] = append(r.bySession[conn.SessionID], conn)
}

// Unregister removes a connection; unknown connections are a no-op.
// Empty session buckets are deleted so closed sessions do not linger.
func (r *ConnectionRegistry) Unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := removeConnection(r.bySession[conn.SessionID], conn)
	if len(remaining) == 0 {
		delete(r.bySession, conn.SessionID)
		return
	}
	r.bySession[conn.SessionID] = remaining
}

// GetBySession returns a copy of the connections watching a session
func (r *ConnectionRegistry) GetBySession(sessionID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.bySession[sessionID]
	result := make([]*Connection, len(conns))
	copy(result, conns)
	return result
}

// Count returns the total number of live connections
func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, conns := range r.bySession {
		count += len(conns)
	}
	return count
}

// SessionCount returns the number of sessions with at least one
// connection
func (r *ConnectionRegistry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySession)
}

func removeConnection(conns []*Connection, target *Connection) []*Connection {
	result := make([]*Connection, 0, len(conns))
	for _, conn := range conns {
		if conn != target {
			result = append(result, conn)
		}
	}
	return result
}
