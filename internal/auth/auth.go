// Package auth implements the credential check and bearer token gate for
// the admin API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned on login failure. It covers both
	// unknown users and wrong passwords so the response leaks neither.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a token is missing, malformed,
	// or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound is returned by user stores for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
)

// MetadataKey marks huma operations that require a valid bearer token.
const MetadataKey = "protected"

// TokenTTL is the lifetime of issued session tokens.
const TokenTTL = 24 * time.Hour

// User is the single admin credential record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

// UserStore looks up credential records.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// Service validates credentials and issues/verifies bearer tokens.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(users UserStore, secret []byte) *Service {
	return &Service{
		users:  users,
		secret: secret,
		ttl:    TokenTTL,
	}
}

// Login checks the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify validates a session token and returns the principal it was issued
// to. Any validation failure maps to ErrUnauthenticated.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	return claims.Subject, nil
}

// HashPassword returns a bcrypt hash for seeding the admin credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

type principalKey struct{}

// ContextWithPrincipal stores the authenticated principal in the context.
func ContextWithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey{}).(string)

	return principal, ok
}
