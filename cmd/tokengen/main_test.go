package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-project-hub/internal/auth"
	"go-project-hub/internal/config"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		AppEnv:         env,
		JWTSecret:      "tokengen-secret",
		JWTAlgorithm:   "HS256",
		AccessTokenTTL: 30 * time.Minute,
	}
}

func TestRunIssuesVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(testConfig("development"), []string{"--sub", "7", "--email", "a@b.c", "--ttl", "5m"}, &out))

	verifier, err := auth.NewJWTVerifier("tokengen-secret", "HS256")
	require.NoError(t, err)

	claims, err := verifier.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, "7", claims["sub"])
	require.Equal(t, "a@b.c", claims["email"])
}

func TestRunMockToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(testConfig("development"), []string{"--sub=42", "--mock"}, &out))
	require.Equal(t, "mock_access_token_42\n", out.String())

	out.Reset()
	require.Error(t, run(testConfig(config.EnvProduction), []string{"--sub=42", "--mock"}, &out))
	require.Empty(t, out.String())
}

func TestRunRequiresSubject(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run(testConfig("development"), nil, &out))
	require.Error(t, run(testConfig("development"), []string{"--sub", "-1"}, &out))
}
