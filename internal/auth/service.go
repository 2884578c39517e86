package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mznsh11/Blex/internal/db"
	"github.com/mznsh11/Blex/internal/model"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errMissingFields      = errors.New("name, username, password required")
)

var hashPasswordFn = bcrypt.GenerateFromPassword

type Service struct {
	secret []byte
	db     db.Querier
	state  *state.State
	store  *store.Orchestrator
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewService(secret string, database db.Querier, st *state.State, orch *store.Orchestrator) *Service {
	return &Service{
		secret: []byte(secret),
		db:     database,
		state:  st,
		store:  orch,
	}
}

// Register creates the account and user, opens a session and hands back
// tokens. Usernames are unique case-insensitively.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Profile, TokenResponse, error) {
	if req.Name == "" || req.Username == "" || req.Password == "" {
		return Profile{}, TokenResponse{}, errMissingFields
	}

	role := model.RoleRegular
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return Profile{}, TokenResponse{}, err
		}
		role = parsed
	}

	hash, err := hashPasswordFn([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}

	var profile Profile
	err = s.state.Update(func(g *state.Graph) error {
		for _, u := range g.Users {
			if strings.EqualFold(u.Username(), req.Username) {
				return model.ErrDuplicateUsername
			}
		}
		acc, err := model.NewAccount(req.Username, string(hash), role)
		if err != nil {
			return err
		}
		acc.StartSession(time.Now())
		user := model.NewUser(len(g.Users)+1, req.Name, req.Bio, req.ProfilePic, acc)
		g.Users = append(g.Users, user)
		profile = ProfileOf(user)
		return nil
	})
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}
	if err := s.persist(ctx); err != nil {
		return Profile{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, profile.Username)
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}
	return profile, tokens, nil
}

// Login resolves the identifier by username first and display name second,
// verifies the password and opens a session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (Profile, TokenResponse, error) {
	var profile Profile
	err := s.state.Update(func(g *state.Graph) error {
		user := g.FindUser(req.Username)
		if user == nil {
			return errInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Account.PasswordHash), []byte(req.Password)); err != nil {
			return errInvalidCredentials
		}
		user.Account.StartSession(time.Now())
		profile = ProfileOf(user)
		return nil
	})
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, profile.Username)
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}
	return profile, tokens, nil
}

func (s *Service) Logout(username string) error {
	return s.state.Update(func(g *state.Graph) error {
		user := g.FindUser(username)
		if user == nil {
			return model.ErrNotFound
		}
		user.Account.EndSession()
		return nil
	})
}

func (s *Service) GenerateTokens(ctx context.Context, username string) (TokenResponse, error) {
	access, err := s.signToken(username, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(username, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, username, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	username, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || username != claims.Username || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.Username, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (s *Service) signToken(username string, ttl time.Duration) (string, error) {
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

// Refresh tokens live outside the snapshot tables; without a primary store
// sessions simply do not survive a restart.
func (s *Service) saveRefreshToken(ctx context.Context, token, username string, ttl time.Duration) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, username, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), username, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	if s.db == nil {
		return "", time.Time{}, errors.New("refresh store unavailable")
	}
	row := s.db.QueryRow(ctx, `
		SELECT username, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var username string
	var expiresAt time.Time
	if err := row.Scan(&username, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return username, expiresAt, nil
}

// persist writes the full snapshot; a failed save fails the mutation that
// triggered it even though the in-memory graph already moved on.
func (s *Service) persist(ctx context.Context) error {
	g := s.state.Snapshot()
	return s.store.SaveAll(ctx, g.Users, g.Posts, g.Messages, g.Marketplace)
}
