package model

import "time"

// User owns its Account and mirrors the follow relation on both sides:
// username B appears in A.Following exactly when A appears in B.Followers.
// Both lists hold usernames, never live user handles.
type User struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Bio        string   `json:"bio"`
	ProfilePic string   `json:"profile_pic"`
	Account    Account  `json:"account"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
}

func NewUser(id int, name, bio, profilePic string, account Account) *User {
	return &User{
		ID:         id,
		Name:       name,
		Bio:        bio,
		ProfilePic: profilePic,
		Account:    account,
	}
}

func (u *User) Username() string {
	return u.Account.Username
}

// Clone returns a copy detached from the live graph, safe to hand out
// after the state lock is released.
func (u *User) Clone() *User {
	copied := *u
	copied.Followers = append([]string(nil), u.Followers...)
	copied.Following = append([]string(nil), u.Following...)
	return &copied
}

func (u *User) IsFollowing(username string) bool {
	for _, f := range u.Following {
		if f == username {
			return true
		}
	}
	return false
}

type Message struct {
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sent_at"`
}

func NewMessage(sender, receiver *User, content string, at time.Time) *Message {
	return &Message{
		Sender:   sender.Username(),
		Receiver: receiver.Username(),
		Content:  content,
		SentAt:   at,
	}
}

func (m *Message) Clone() *Message {
	copied := *m
	return &copied
}
