package social

import "github.com/mznsh11/Blex/internal/auth"

type FollowRequest struct {
	Username string `json:"username"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

// Relations is a profile together with both sides of its follow edges.
type Relations struct {
	User      auth.Profile `json:"user"`
	Followers []string     `json:"followers"`
	Following []string     `json:"following"`
}
