package entities

import "time"

// Message is an inquiry submitted through the public contact form
type Message struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"` // markdown
	Read      bool       `json:"read"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MessageReply is the payload for replying to a message
type MessageReply struct {
	Body string `json:"body"`
}
