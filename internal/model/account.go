package model

import (
	"errors"
	"time"
)

type Role string

const (
	RoleRegular      Role = "regular"
	RoleProfessional Role = "professional"
)

// SessionWindow is how long an account session stays active after a
// successful login.
const SessionWindow = 10 * time.Minute

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleRegular, RoleProfessional:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// Account carries the credentials owned by exactly one User. The password
// digest is opaque to the rest of the system; it round-trips through both
// storage tiers verbatim.
type Account struct {
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	SessionExpiry time.Time `json:"-"`
}

func NewAccount(username, passwordHash string, role Role) (Account, error) {
	if username == "" {
		return Account{}, errors.New("username required")
	}
	if passwordHash == "" {
		return Account{}, errors.New("password digest required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Account{}, err
	}
	return Account{Username: username, PasswordHash: passwordHash, Role: role}, nil
}

func (a *Account) StartSession(now time.Time) {
	a.SessionExpiry = now.Add(SessionWindow)
}

func (a *Account) EndSession() {
	a.SessionExpiry = time.Time{}
}

func (a *Account) SessionActive(now time.Time) bool {
	return !a.SessionExpiry.IsZero() && now.Before(a.SessionExpiry)
}
