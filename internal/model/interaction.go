package model

import "time"

type InteractionKind string

const (
	InteractionLike    InteractionKind = "like"
	InteractionComment InteractionKind = "comment"
)

// Interaction belongs to exactly one post's ordered interaction list.
// Content is set for comments only.
type Interaction struct {
	Kind      InteractionKind `json:"kind"`
	Username  string          `json:"username"`
	Content   string          `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewLike(username string, at time.Time) Interaction {
	return Interaction{Kind: InteractionLike, Username: username, CreatedAt: at}
}

func NewComment(username, content string, at time.Time) Interaction {
	return Interaction{Kind: InteractionComment, Username: username, Content: content, CreatedAt: at}
}

func (i Interaction) Actor() string {
	return i.Username
}

func (i Interaction) When() time.Time {
	return i.CreatedAt
}

func (i Interaction) Summary() string {
	if i.Kind == InteractionComment {
		return i.Username + " commented: " + i.Content
	}
	return i.Username + " liked this post."
}
