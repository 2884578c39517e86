package message

import "time"

type SendRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// InboxEvent is the payload pushed over the recipient's event stream.
type InboxEvent struct {
	From    string    `json:"from"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}
