package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-project-hub/internal/model"
)

// DebugTokenPrefix marks unsigned test tokens of the form
// "mock_access_token_<id>".
const DebugTokenPrefix = "mock_access_token_"

// Verifier validates a raw token and returns its claims. Failures are
// model.ErrTokenExpired or model.ErrInvalidToken.
type Verifier interface {
	Verify(token string) (jwt.MapClaims, error)
}

// JWTVerifier checks signature, algorithm and expiry of signed session tokens.
type JWTVerifier struct {
	secret    []byte
	algorithm string
	now       func() time.Time
}

func NewJWTVerifier(secret string, algorithm string, opts ...Option) (*JWTVerifier, error) {
	method, err := signingMethod(algorithm)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &JWTVerifier{secret: []byte(secret), algorithm: method.Alg(), now: o.now}, nil
}

func (v *JWTVerifier) Verify(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{v.algorithm}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

// DebugTokenVerifier accepts "mock_access_token_<id>" without a signature and
// hands every other token to next. It must only be installed outside
// production; see NewVerifier.
type DebugTokenVerifier struct {
	next Verifier
}

func NewDebugTokenVerifier(next Verifier) *DebugTokenVerifier {
	return &DebugTokenVerifier{next: next}
}

func (v *DebugTokenVerifier) Verify(token string) (jwt.MapClaims, error) {
	suffix, found := strings.CutPrefix(token, DebugTokenPrefix)
	if !found {
		return v.next.Verify(token)
	}

	id, err := strconv.ParseUint(suffix, 10, 63)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	return jwt.MapClaims{"sub": int64(id)}, nil
}

// NewVerifier selects the verification strategy once at startup. Debug
// tokens are honoured only when production is false.
func NewVerifier(secret string, algorithm string, production bool, opts ...Option) (Verifier, error) {
	signed, err := NewJWTVerifier(secret, algorithm, opts...)
	if err != nil {
		return nil, err
	}

	if production {
		return signed, nil
	}
	return NewDebugTokenVerifier(signed), nil
}

// SubjectID reads the principal identifier from verified claims. Signed
// tokens carry it as a decimal string, debug tokens as an integer.
func SubjectID(claims jwt.MapClaims) (int64, error) {
	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(sub), 10, 64)
		if err != nil || id < 0 {
			return 0, model.ErrInvalidToken
		}
		return id, nil
	case int64:
		if sub < 0 {
			return 0, model.ErrInvalidToken
		}
		return sub, nil
	case float64:
		if sub < 0 || sub != float64(int64(sub)) {
			return 0, model.ErrInvalidToken
		}
		return int64(sub), nil
	default:
		return 0, model.ErrInvalidToken
	}
}
