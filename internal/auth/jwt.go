// Package auth issues and validates identity tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sujalbistaa/drumfeed/internal/common"
)

// Identity is what a valid token says about its bearer.
type Identity struct {
	UserID   string
	Username string
}

// Claims carries the user id and username next to the registered claims.
type Claims struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for id valid for the configured duration.
func (m *TokenManager) Issue(id Identity) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}
	return s, nil
}

// Parse validates signature and expiry. Every failure is ErrUnauthenticated.
func (m *TokenManager) Parse(raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.Error(common.ErrUnauthenticated, "Token expired")
		}
		return Identity{}, common.Error(common.ErrUnauthenticated, "Invalid token")
	}
	if !token.Valid || claims.UserID == "" {
		return Identity{}, common.Error(common.ErrUnauthenticated, "Invalid token")
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
