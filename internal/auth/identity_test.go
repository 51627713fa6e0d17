package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"go-project-hub/internal/model"
)

const (
	testIssuer   = "https://accounts.example.com"
	testClientID = "project-hub-web"
)

func newTestOIDCVerifier(t *testing.T) (*OIDCIdentityVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &OIDCIdentityVerifier{verifier: oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID})}, key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	base := jwt.MapClaims{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "google-123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		base[k] = v
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, base).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestOIDCIdentityVerifier(t *testing.T) {
	t.Parallel()

	verifier, key := newTestOIDCVerifier(t)
	ctx := context.Background()

	t.Run("valid token yields identity", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com", "email_verified": true, "name": "Ada Lovelace"})

		identity, err := verifier.VerifyIDToken(ctx, raw, Identity{Email: "ADA@example.com", Name: "ignored"})
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", identity.Email)
		require.Equal(t, "Ada Lovelace", identity.Name)
	})

	t.Run("claimed name fills a missing name claim", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com"})

		identity, err := verifier.VerifyIDToken(ctx, raw, Identity{Name: "Ada"})
		require.NoError(t, err)
		require.Equal(t, "Ada", identity.Name)
	})

	t.Run("email mismatch", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com"})

		_, err := verifier.VerifyIDToken(ctx, raw, Identity{Email: "eve@example.com"})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unverified email", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com", "email_verified": false})

		_, err := verifier.VerifyIDToken(ctx, raw, Identity{})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("wrong audience", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com", "aud": "someone-else"})

		_, err := verifier.VerifyIDToken(ctx, raw, Identity{})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("expired", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{"email": "ada@example.com", "exp": time.Now().Add(-time.Hour).Unix()})

		_, err := verifier.VerifyIDToken(ctx, raw, Identity{})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("foreign key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		raw := signIDToken(t, other, jwt.MapClaims{"email": "ada@example.com"})

		_, err = verifier.VerifyIDToken(ctx, raw, Identity{})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifyIDToken(ctx, "not-a-token", Identity{})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestTrustedIdentityVerifier(t *testing.T) {
	t.Parallel()

	var verifier TrustedIdentityVerifier

	identity, err := verifier.VerifyIDToken(context.Background(), "dev-token", Identity{Email: " ada@example.com ", Name: "Ada"})
	require.NoError(t, err)
	require.Equal(t, Identity{Email: "ada@example.com", Name: "Ada"}, identity)

	_, err = verifier.VerifyIDToken(context.Background(), "", Identity{Email: "ada@example.com"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = verifier.VerifyIDToken(context.Background(), "dev-token", Identity{})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}
