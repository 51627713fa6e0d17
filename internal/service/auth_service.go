package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-project-hub/internal/auth"
	"go-project-hub/internal/model"
	"go-project-hub/internal/writelock"
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdateName(ctx context.Context, id int64, name string) (model.User, error)
}

type AuthService struct {
	users      UserStore
	issuer     *auth.Issuer
	hasher     *auth.PasswordHasher
	identities auth.IdentityVerifier
	locks      *writelock.Keyed
	audit      *AuditService
}

func NewAuthService(
	users UserStore,
	issuer *auth.Issuer,
	hasher *auth.PasswordHasher,
	identities auth.IdentityVerifier,
	locks *writelock.Keyed,
	audit *AuditService,
) *AuthService {
	return &AuthService{
		users:      users,
		issuer:     issuer,
		hasher:     hasher,
		identities: identities,
		locks:      locks,
		audit:      audit,
	}
}

func userLockKey(email string) string {
	return "user:" + email
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, actor model.AuditActor) (model.AuthUser, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthUser{}, err
	}

	name, err := optionalText(req.Name, "name", maxNameLength)
	if err != nil {
		return model.AuthUser{}, err
	}

	if len(req.Password) < minPasswordLength {
		return model.AuthUser{}, badRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("hash password: %w", err)
	}

	actor.Email = email
	var created model.User
	err = s.locks.Do(userLockKey(email), func() error {
		if _, findErr := s.users.FindByEmail(ctx, email); findErr == nil {
			return model.ErrUserAlreadyExists
		} else if !errors.Is(findErr, model.ErrUserNotFound) {
			return findErr
		}

		var createErr error
		created, createErr = s.users.Create(ctx, model.User{Email: email, Name: name, PasswordHash: hash})
		return createErr
	})
	if err != nil {
		s.audit.Log(ctx, "auth.register", actor, auditFailed, email, err.Error())
		return model.AuthUser{}, err
	}

	actor.UserID = created.ID
	s.audit.Log(ctx, "auth.register", actor, auditSuccess, userResource(created.ID), "")
	return created.Public(), nil
}

// Login checks an email and password. Unknown emails, wrong passwords and
// externally authenticated principals all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	actor.Email = email

	if email == "" || req.Password == "" {
		s.audit.Log(ctx, "auth.login", actor, auditFailed, email, "missing credentials")
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.audit.Log(ctx, "auth.login", actor, auditFailed, email, "unknown email")
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenResponse{}, err
	}

	actor.UserID = user.ID
	if user.PasswordHash == model.ExternalPasswordSentinel || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.audit.Log(ctx, "auth.login", actor, auditFailed, userResource(user.ID), "password mismatch")
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	if !user.Active() {
		s.audit.Log(ctx, "auth.login", actor, auditFailed, userResource(user.ID), "inactive principal")
		return model.TokenResponse{}, model.ErrInactivePrincipal
	}

	resp, err := s.tokenResponse(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	s.audit.Log(ctx, "auth.login", actor, auditSuccess, userResource(user.ID), "")
	return resp, nil
}

// ExternalLogin exchanges a verified identity-provider ID token for a
// session token, creating the principal on first sight of the email.
func (s *AuthService) ExternalLogin(ctx context.Context, req model.ExternalLoginRequest, actor model.AuditActor) (model.TokenResponse, error) {
	if strings.TrimSpace(req.IDToken) == "" {
		return model.TokenResponse{}, badRequest("id_token is required", "id_token")
	}

	claimedEmail, err := normalizeEmail(req.Email)
	if err != nil {
		return model.TokenResponse{}, err
	}
	actor.Email = claimedEmail

	identity, err := s.identities.VerifyIDToken(ctx, req.IDToken, auth.Identity{
		Email: claimedEmail,
		Name:  strings.TrimSpace(req.Name),
	})
	if err != nil {
		s.audit.Log(ctx, "auth.google", actor, auditFailed, claimedEmail, err.Error())
		return model.TokenResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	var user model.User
	err = s.locks.Do(userLockKey(email), func() error {
		existing, findErr := s.users.FindByEmail(ctx, email)
		if findErr == nil {
			user = existing
			return nil
		}
		if !errors.Is(findErr, model.ErrUserNotFound) {
			return findErr
		}

		var createErr error
		user, createErr = s.users.Create(ctx, model.User{
			Email:        email,
			Name:         identity.Name,
			PasswordHash: model.ExternalPasswordSentinel,
		})
		return createErr
	})
	if err != nil {
		s.audit.Log(ctx, "auth.google", actor, auditFailed, email, err.Error())
		return model.TokenResponse{}, err
	}

	actor.UserID = user.ID
	if !user.Active() {
		s.audit.Log(ctx, "auth.google", actor, auditFailed, userResource(user.ID), "inactive principal")
		return model.TokenResponse{}, model.ErrInactivePrincipal
	}

	resp, err := s.tokenResponse(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	s.audit.Log(ctx, "auth.google", actor, auditSuccess, userResource(user.ID), "")
	return resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user model.User, req model.UpdateProfileRequest) (model.AuthUser, error) {
	name, err := requireText(req.Name, "name", maxNameLength)
	if err != nil {
		return model.AuthUser{}, err
	}

	updated, err := s.users.UpdateName(ctx, user.ID, name)
	if err != nil {
		return model.AuthUser{}, err
	}

	return updated.Public(), nil
}

func (s *AuthService) tokenResponse(user model.User) (model.TokenResponse, error) {
	token, err := s.issuer.IssueFor(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenTypeBearer,
		ExpiresIn:   int64(s.issuer.Lifetime().Seconds()),
		User:        user.Public(),
	}, nil
}

func userResource(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}
