package model

import "time"

// ChatMessage is an append-only team chat entry. Messages are never
// mutated after creation; ordering is by CreatedAt ascending.
type ChatMessage struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"team_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// TypingIndicator is the ephemeral per-user-per-team typing state.
// A new keystroke refreshes the existing entry rather than duplicating it.
type TypingIndicator struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	TeamID      string    `json:"team_id"`
	IsTyping    bool      `json:"is_typing"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SendMessageRequest struct {
	// ID lets the sender pick the message id so its own realtime echo
	// can be recognised and suppressed.
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}
