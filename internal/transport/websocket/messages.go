package websocket

import "github.com/iamasit07/connect4-table/internal/domain"

// Client frame types
const (
	MsgInit  = "init"
	MsgDrop  = "drop"
	MsgReset = "reset"
	MsgState = "state"
)

// Server frame types
const (
	MsgError       = "error"
	MsgTableClosed = "table_closed"
)

type ClientMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	Column *int   `json:"column,omitempty"`
}

type ServerMessage struct {
	Type    string           `json:"type"`
	State   *domain.Snapshot `json:"state,omitempty"`
	Code    string           `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
}

func stateMessage(s domain.Snapshot) ServerMessage {
	return ServerMessage{Type: MsgState, State: &s}
}

func errorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Code: code, Message: message}
}
