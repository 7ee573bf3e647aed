// Package events contains the websocket event contract.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeCalibrationUpdated MessageType = "calibration:updated"
	MessageTypeConnect            MessageType = "connect"
	MessageTypeError              MessageType = "error"
)

// Calibration change actions
const (
	ActionPointAdded    = "point_added"
	ActionPointReplaced = "point_replaced"
	ActionPointDeleted  = "point_deleted"
	ActionReplaced      = "replaced"
	ActionImported      = "imported"
)

// WebSocketMessage is the envelope of every message sent to clients
type WebSocketMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Action    string      `json:"action,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// CalibrationUpdated is published after every calibration rebuild
type CalibrationUpdated struct {
	Kind   string `json:"kind"`
	Degree int    `json:"degree"`
	Points int    `json:"points"`
}
