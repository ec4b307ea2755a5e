package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-table/internal/domain"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn

	// writeMu ensures only one goroutine writes to the socket at a time,
	// conn.WriteJSON is not safe for concurrent use.
	writeMu sync.Mutex
}

func (c *client) send(message ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// ConnectionManager keeps at most one live socket per table.
type ConnectionManager struct {
	clients map[string]*client // tableID → client
	mu      sync.RWMutex       // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*client),
	}
}

// AddConnection registers conn for the table, closing any socket it replaces.
// Replies to the socket's own frames go through the returned client.
func (cm *ConnectionManager) AddConnection(tableID string, conn *websocket.Conn) *client {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.clients[tableID]; exists {
		log.WithField("table", tableID).Info("[WS] Replacing older connection")
		old.conn.Close()
	}
	c := &client{conn: conn}
	cm.clients[tableID] = c
	return c
}

// RemoveConnectionIfMatching avoids closing a NEW connection when cleaning up an OLD one.
func (cm *ConnectionManager) RemoveConnectionIfMatching(tableID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.clients[tableID]; exists && current.conn == conn {
		current.conn.Close()
		delete(cm.clients, tableID)
	}
}

func (cm *ConnectionManager) IsConnected(tableID string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, exists := cm.clients[tableID]
	return exists
}

// SendMessage writes a JSON frame to the table's socket, if one is open.
func (cm *ConnectionManager) SendMessage(tableID string, message ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.clients[tableID]
	cm.mu.RUnlock()

	if !exists {
		return nil // Nobody listening, ignore
	}
	return c.send(message)
}

// NotifyState implements game.Notifier.
func (cm *ConnectionManager) NotifyState(tableID string, snapshot domain.Snapshot) {
	if err := cm.SendMessage(tableID, stateMessage(snapshot)); err != nil {
		log.WithField("table", tableID).Warnf("[WS] Failed to push state: %v", err)
	}
}

// TableClosed implements game.Notifier: tell the client, then hang up.
func (cm *ConnectionManager) TableClosed(tableID string) {
	cm.mu.Lock()
	c, exists := cm.clients[tableID]
	delete(cm.clients, tableID)
	cm.mu.Unlock()

	if !exists {
		return
	}
	_ = c.send(ServerMessage{Type: MsgTableClosed})
	c.conn.Close()
}

func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for tableID, c := range cm.clients {
		c.conn.Close()
		delete(cm.clients, tableID)
	}
}
