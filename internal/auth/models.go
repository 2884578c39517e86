package auth

import "github.com/mznsh11/Blex/internal/model"

type RegisterRequest struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Profile is the public view of a user; the credential digest never leaves
// the service.
type Profile struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
	Role       string `json:"role"`
}

func ProfileOf(u *model.User) Profile {
	return Profile{
		ID:         u.ID,
		Username:   u.Username(),
		Name:       u.Name,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		Role:       string(u.Account.Role),
	}
}
