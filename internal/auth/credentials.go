package auth

import (
	"fmt"
	"strings"

	"go-project-hub/internal/model"
)

var errUnsupportedScheme = fmt.Errorf("%w: unsupported authorization scheme", model.ErrUnauthenticated)

// BearerToken extracts the credential from an Authorization header value.
// A missing header, or a bearer header with a blank credential, reports
// found=false with no error. Any other scheme is an invalid credential.
func BearerToken(header string) (token string, found bool, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false, nil
	}

	scheme, credential, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return "", false, errUnsupportedScheme
	}

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", false, nil
	}

	return credential, true, nil
}
