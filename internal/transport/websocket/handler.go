package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-table/internal/domain"
	"github.com/iamasit07/connect4-table/internal/service/game"
	"github.com/iamasit07/connect4-table/pkg/auth"
	log "github.com/sirupsen/logrus"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager *ConnectionManager
	Service     *game.Service
	Secret      string
	Upgrader    websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, svc *game.Service, secret string, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		ConnManager: cm,
		Service:     svc,
		Secret:      secret,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket upgrades GET /ws/tables/:id
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tableID := c.Param("id")
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(tableID, conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(tableID string, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Keep-alive pinger; WriteControl may run alongside other writers
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	// 1. Wait for initialization (table token)
	if !h.authenticate(tableID, conn) {
		conn.Close()
		return
	}

	cl := h.ConnManager.AddConnection(tableID, conn)
	log.WithField("table", tableID).Info("[WS] Connection initialized")

	// 2. Cleanup on exit
	defer func() {
		log.WithField("table", tableID).Info("[WS] Connection closed")
		h.ConnManager.RemoveConnectionIfMatching(tableID, conn)
	}()

	snapshot, err := h.Service.State(tableID)
	if err != nil {
		cl.send(errorMessage("table_not_found", err.Error()))
		return
	}
	cl.send(stateMessage(snapshot))

	// 3. Main message loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("table", tableID).Warnf("[WS] Client disconnected unexpectedly: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			cl.send(errorMessage("bad_request", "Invalid message format"))
			continue
		}

		if !h.processMessage(tableID, cl, msg) {
			return
		}
	}
}

func (h *Handler) authenticate(tableID string, conn *websocket.Conn) bool {
	var msg ClientMessage
	if err := conn.ReadJSON(&msg); err != nil {
		log.WithField("table", tableID).Warnf("[WS] Read error during init: %v", err)
		return false
	}

	if msg.Type != MsgInit || msg.Token == "" {
		log.WithField("table", tableID).Warn("[WS] Missing initialization or token")
		conn.WriteJSON(errorMessage("unauthorized", "First message must be init with a token"))
		return false
	}

	if _, err := auth.AuthorizeTable(h.Secret, msg.Token, tableID); err != nil {
		log.WithField("table", tableID).Warnf("[WS] Invalid token during init: %v", err)
		conn.WriteJSON(errorMessage("unauthorized", "Invalid table token"))
		return false
	}
	return true
}

// processMessage routes client actions. Accepted drops and resets reach the
// table's socket through the service's notifier; everything else is answered
// on cl, the socket that sent the frame.
// It returns false when the connection should be dropped.
func (h *Handler) processMessage(tableID string, cl *client, msg ClientMessage) bool {
	var (
		snapshot domain.Snapshot
		err      error
	)

	switch msg.Type {
	case MsgDrop:
		if msg.Column == nil {
			cl.send(errorMessage("bad_request", "drop needs a column"))
			return true
		}
		snapshot, err = h.Service.Drop(tableID, *msg.Column)

	case MsgReset:
		snapshot, err = h.Service.Reset(tableID)

	case MsgState:
		snapshot, err = h.Service.State(tableID)
		if err == nil {
			cl.send(stateMessage(snapshot))
			return true
		}

	default:
		cl.send(errorMessage("bad_request", "Unknown message type"))
		return true
	}

	if err == nil {
		return true
	}

	if errors.Is(err, game.ErrTableNotFound) {
		cl.send(errorMessage("table_not_found", err.Error()))
		return false
	}

	var domainErr domain.Error
	if errors.As(err, &domainErr) {
		reply := errorMessage(domainErr.Code(), domainErr.Error())
		reply.State = &snapshot
		cl.send(reply)
		return true
	}

	log.WithField("table", tableID).Errorf("[WS] Unexpected error: %v", err)
	cl.send(errorMessage("internal", "internal error"))
	return true
}
