package model

import (
	"errors"
	"fmt"
)

var (
	// Authentication errors. Every credential failure wraps ErrUnauthenticated.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)

	// Authorization errors
	ErrForbidden         = errors.New("forbidden")
	ErrInactivePrincipal = fmt.Errorf("%w: inactive principal", ErrForbidden)

	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Project related errors
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAlreadyExists = errors.New("project already exists")
	ErrRiskNotFound         = errors.New("risk not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)
