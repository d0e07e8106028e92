package model

import "encoding/json"

const (
	EventNewMessage = "new_message"
	EventTyping     = "typing"
	EventSubscribe  = "subscribe"
	EventPing       = "ping"
	EventPong       = "pong"
)

// Event is the wire frame for the realtime channel.
type Event struct {
	Type   string          `json:"type"`
	TeamID string          `json:"team_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type SubscribePayload struct {
	TeamID string `json:"team_id"`
}
