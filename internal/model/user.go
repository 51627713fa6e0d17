package model

import "time"

// ExternalPasswordSentinel marks principals that authenticate through an
// external identity provider. It is never a valid bcrypt hash.
const ExternalPasswordSentinel = "!external"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     *bool     `json:"is_active,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the principal may act. A nil IsActive means the
// flag was never set and the principal is active.
func (u User) Active() bool {
	if u.IsActive == nil {
		return true
	}
	return *u.IsActive
}

func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	User        AuthUser `json:"user"`
}
