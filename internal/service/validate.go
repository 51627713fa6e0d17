package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go-project-hub/internal/model"
	"go-project-hub/internal/util"
	"go-project-hub/pkg/apierror"
)

const (
	maxNameLength        = 120
	maxDescriptionLength = 4000
	minPasswordLength    = 8
)

func badRequest(message string, field string) error {
	return fmt.Errorf("%w: %w", model.ErrInvalidInput, apierror.BadRequest(message, field))
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", badRequest("email is required", "email")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", badRequest("email is invalid", "email")
	}

	return email, nil
}

func requireText(raw string, field string, maxLen int) (string, error) {
	value := util.CleanText(raw, false)
	if value == "" {
		return "", badRequest(field+" is required", field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return "", badRequest(fmt.Sprintf("%s must be at most %d characters", field, maxLen), field)
	}
	return value, nil
}

// optionalText allows line breaks; it backs free-form descriptions.
func optionalText(raw string, field string, maxLen int) (string, error) {
	value := util.CleanText(raw, true)
	if utf8.RuneCountInString(value) > maxLen {
		return "", badRequest(fmt.Sprintf("%s must be at most %d characters", field, maxLen), field)
	}
	return value, nil
}
