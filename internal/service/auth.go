package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sujalbistaa/drumfeed/internal/auth"
	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/db"
	"github.com/sujalbistaa/drumfeed/internal/logging"
	"github.com/sujalbistaa/drumfeed/internal/models"
	"github.com/sujalbistaa/drumfeed/internal/ownership"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

type TokenManager interface {
	Issue(id auth.Identity) (string, error)
	Parse(raw string) (auth.Identity, error)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  db.UserRepository
	hasher PasswordHasher
	tokens TokenManager
	log    logging.Logger
}

func NewAuthService(users db.UserRepository, hasher PasswordHasher, tokens TokenManager, log logging.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

const credentialsRequired = "Username and password are required"

// Signup creates an account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*AuthResult, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, common.Error(common.ErrValidation, credentialsRequired)
	}

	_, err := s.users.ByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, common.Error(common.ErrConflict, "Username already exists")
	case !errors.Is(err, common.ErrNotFound):
		return nil, fail(ctx, s.log, "Creating user", "User", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fail(ctx, s.log, "Creating user", "User", errors.Join(common.ErrInternal, err))
	}

	u := &models.User{ID: uuid.NewString(), Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Error(common.ErrConflict, "Username already exists")
		}
		return nil, fail(ctx, s.log, "Creating user", "User", err)
	}

	s.log.Info(ctx, "user signed up", "user_id", u.ID)
	return s.issue(ctx, u)
}

// Login checks credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, common.Error(common.ErrValidation, credentialsRequired)
	}

	invalid := common.Error(common.ErrUnauthenticated, "Invalid username or password")

	u, err := s.users.ByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fail(ctx, s.log, "Logging in", "User", err)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, fail(ctx, s.log, "Logging in", "User", errors.Join(common.ErrInternal, err))
	}
	if !ok {
		return nil, invalid
	}
	return s.issue(ctx, u)
}

// Identify validates a bearer token and returns the normalized identity.
func (s *AuthService) Identify(raw string) (auth.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return auth.Identity{}, common.Error(common.ErrUnauthenticated, "Authentication required")
	}
	id, err := s.tokens.Parse(raw)
	if err != nil {
		return auth.Identity{}, err
	}
	id.UserID = ownership.Normalize(id.UserID)
	return id, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		return nil, fail(ctx, s.log, "Issuing token", "User", errors.Join(common.ErrInternal, err))
	}
	return &AuthResult{Token: token, User: u}, nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
