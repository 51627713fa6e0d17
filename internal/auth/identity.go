package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"go-project-hub/internal/model"
)

// Identity is what an external identity provider asserts about a user.
type Identity struct {
	Email string
	Name  string
}

// IdentityVerifier checks an external ID token presented at login against the
// identity the client claims.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string, claimed Identity) (Identity, error)
}

// OIDCIdentityVerifier validates ID tokens against an OpenID provider.
type OIDCIdentityVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCIdentityVerifier runs provider discovery for issuer.
func NewOIDCIdentityVerifier(ctx context.Context, issuer string, clientID string) (*OIDCIdentityVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider %s: %w", issuer, err)
	}

	return &OIDCIdentityVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCIdentityVerifier) VerifyIDToken(ctx context.Context, rawIDToken string, claimed Identity) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, strings.TrimSpace(rawIDToken))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", model.ErrInvalidCredentials, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", model.ErrInvalidCredentials, err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return Identity{}, fmt.Errorf("%w: id token has no email", model.ErrInvalidCredentials)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return Identity{}, fmt.Errorf("%w: email not verified", model.ErrInvalidCredentials)
	}
	if claimed.Email != "" && !strings.EqualFold(strings.TrimSpace(claimed.Email), email) {
		return Identity{}, fmt.Errorf("%w: email mismatch", model.ErrInvalidCredentials)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.TrimSpace(claimed.Name)
	}

	return Identity{Email: email, Name: name}, nil
}

// TrustedIdentityVerifier accepts the claimed identity as long as a token was
// presented. Used in development when no OIDC client is configured.
type TrustedIdentityVerifier struct{}

func (TrustedIdentityVerifier) VerifyIDToken(_ context.Context, rawIDToken string, claimed Identity) (Identity, error) {
	if strings.TrimSpace(rawIDToken) == "" || strings.TrimSpace(claimed.Email) == "" {
		return Identity{}, fmt.Errorf("%w: id_token and email are required", model.ErrInvalidCredentials)
	}

	return Identity{Email: strings.TrimSpace(claimed.Email), Name: strings.TrimSpace(claimed.Name)}, nil
}
