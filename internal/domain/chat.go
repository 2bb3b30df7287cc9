package domain

import "time"

// Chat is a named room created by one user with an invited member set.
type Chat struct {
	ID        int64     `json:"chat_id"`
	Name      string    `json:"chat_name"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one chat message. Persisted first, then fanned out.
type Message struct {
	ID        int64     `json:"message_id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
