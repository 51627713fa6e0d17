// Package auth implements the access-control gate shared by every protected
// endpoint: session token issuance and verification, bearer credential
// extraction, principal resolution and password hashing.
package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-project-hub/internal/model"
)

const TokenTypeBearer = "bearer"

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now for expiry computation and validation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func signingMethod(algorithm string) (jwt.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

// Issuer signs session tokens with a shared secret.
type Issuer struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, algorithm string, lifetime time.Duration, opts ...Option) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	method, err := signingMethod(algorithm)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &Issuer{secret: []byte(secret), method: method, lifetime: lifetime, now: o.now}, nil
}

// Lifetime is the default token lifetime.
func (i *Issuer) Lifetime() time.Duration {
	return i.lifetime
}

// Issue signs claims into a session token. claims must carry the principal
// identifier under "sub" as a string. A non-positive lifetime selects the
// configured default. Any "exp" in claims is overwritten.
func (i *Issuer) Issue(claims jwt.MapClaims, lifetime time.Duration) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", fmt.Errorf("%w: claims require a string sub", model.ErrInternal)
	}
	if lifetime <= 0 {
		lifetime = i.lifetime
	}

	signed := make(jwt.MapClaims, len(claims)+1)
	for key, value := range claims {
		signed[key] = value
	}
	signed["exp"] = i.now().Add(lifetime).Unix()

	token, err := jwt.NewWithClaims(i.method, signed).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", model.ErrInternal, err)
	}

	return token, nil
}

// IssueFor issues a default-lifetime token for a principal.
func (i *Issuer) IssueFor(user model.User) (string, error) {
	return i.Issue(jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
	}, 0)
}
