// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"
)

const (
	MaxIdentityIDLen = 64
	MaxEmailLen      = 254
)

type IdentityID string

// Identity is owned by the external identity provider and is read-only here.
type Identity struct {
	ID        IdentityID `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
}

// NewIdentity validates the required fields of a provider record.
func NewIdentity(id, email string) (*Identity, error) {
	id = strings.TrimSpace(id)
	email = strings.TrimSpace(email)
	if id == "" || len(id) > MaxIdentityIDLen {
		return nil, ErrInvalidIdentity
	}
	if email == "" || len(email) > MaxEmailLen || !strings.Contains(email, "@") {
		return nil, ErrInvalidIdentity
	}
	return &Identity{ID: IdentityID(id), Email: email}, nil
}

// DisplayName falls back to the email when no full name is known.
func (i *Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Email
}
