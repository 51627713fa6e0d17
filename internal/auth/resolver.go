package auth

import (
	"context"
	"errors"
	"fmt"

	"go-project-hub/internal/model"
)

var errNotAuthenticated = fmt.Errorf("%w: not authenticated", model.ErrUnauthenticated)

// PrincipalStore loads principals by identifier. Missing principals must be
// reported as model.ErrUserNotFound.
type PrincipalStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
}

// Resolver turns an Authorization header into the current principal.
type Resolver struct {
	verifier Verifier
	users    PrincipalStore
}

func NewResolver(verifier Verifier, users PrincipalStore) *Resolver {
	return &Resolver{verifier: verifier, users: users}
}

// Required fails with model.ErrUnauthenticated when no credential is supplied.
func (r *Resolver) Required(ctx context.Context, header string) (model.User, error) {
	token, found, err := BearerToken(header)
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, errNotAuthenticated
	}

	return r.resolve(ctx, token)
}

// Optional returns a nil principal when no credential is supplied at all. A
// supplied credential that fails verification is still an error.
func (r *Resolver) Optional(ctx context.Context, header string) (*model.User, error) {
	token, found, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	user, err := r.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *Resolver) resolve(ctx context.Context, token string) (model.User, error) {
	claims, err := r.verifier.Verify(token)
	if err != nil {
		return model.User{}, err
	}

	id, err := SubjectID(claims)
	if err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	user, err := r.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load principal %d: %w", id, err)
	}

	if !user.Active() {
		return model.User{}, model.ErrInactivePrincipal
	}

	return user, nil
}
