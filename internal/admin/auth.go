// Package admin implements login and bearer-token authentication for the
// catalog management surface. There is a single admin principal configured
// through the environment.
package admin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidCredentials is returned for a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for missing, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "qualclamps-storefront"

// Auth verifies the admin password and issues/validates bearer tokens.
type Auth struct {
	Username     string
	PasswordHash string
	Secret       []byte
	TokenTTL     time.Duration
	Now          func() time.Time
}

func (a Auth) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a Auth) ttl() time.Duration {
	if a.TokenTTL <= 0 {
		return 12 * time.Hour
	}
	return a.TokenTTL
}

// HashPassword produces an argon2id hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// Login checks the credentials and returns a signed bearer token.
func (a Auth) Login(username, password string) (string, time.Time, error) {
	if len(a.Secret) == 0 || a.Username == "" || a.PasswordHash == "" {
		return "", time.Time{}, errors.New("admin auth not configured")
	}
	if username != a.Username {
		return "", time.Time{}, ErrInvalidCredentials
	}
	ok, err := argon2id.ComparePasswordAndHash(password, a.PasswordHash)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now()
	expires := now.Add(a.ttl())
	builder := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(username).
		IssuedAt(now).
		Expiration(expires)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, a.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return string(signed), expires, nil
}

// VerifyToken parses and validates a bearer token, returning the subject.
func (a Auth) VerifyToken(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.ParseString(trimmed,
		jwt.WithKey(jwa.HS256, a.Secret),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(a.now)),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	return token.Subject(), nil
}
