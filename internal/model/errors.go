package model

import "errors"

// Domain outcomes shared across services. The follow/like sentinels are
// informational signals, not failures; handlers report them with a 200.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrAlreadyFollowing  = errors.New("already following")
	ErrNotFollowing      = errors.New("not following")
	ErrAlreadyLiked      = errors.New("already liked")
)
