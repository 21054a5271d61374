// Package auth checks the operator password and issues session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer       = "lyricdeck"
	operatorRole = "operator"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrUnauthorized indicates an invalid or missing token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDisabled is returned by Login when no operator password is configured.
	ErrDisabled = errors.New("authentication is disabled")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// Claims are carried by operator tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies the operator password against a bcrypt hash and
// signs HS256 tokens.
type Authenticator struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns an Authenticator. An empty passwordHash disables authentication.
func New(passwordHash string, secret []byte, ttl time.Duration) *Authenticator {
	return &Authenticator{
		hash:   []byte(passwordHash),
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether mutating requests need a token.
func (a *Authenticator) Enabled() bool {
	return len(a.hash) > 0
}

// Login checks password and returns a signed token and its expiry.
func (a *Authenticator) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return "", time.Time{}, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := &Claims{
		Role: operatorRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   operatorRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Verify parses and validates a token issued by Login.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Role != operatorRole {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash to configure as the operator password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
