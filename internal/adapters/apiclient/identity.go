package apiclient

import (
	"context"
	"errors"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Identity resolves the token holder through GET /api/me.
type Identity struct {
	c *Client
}

var _ core.IdentityProvider = (*Identity)(nil)

func NewIdentity(c *Client) *Identity { return &Identity{c: c} }

// CurrentIdentity returns nil without error when nobody is signed in.
func (i *Identity) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	if i.c.Token() == "" {
		return nil, nil
	}
	var out domain.Identity
	resp, err := i.c.request(ctx).SetResult(&out).Get("/api/me")
	if err := check("current identity", resp, err); err != nil {
		if errors.Is(err, domain.ErrAuthenticationRequired) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.NewIdentity(string(out.ID), out.Email)
	if err != nil {
		return nil, err
	}
	id.FullName, id.AvatarURL = out.FullName, out.AvatarURL
	return id, nil
}

// SignOut clears the server session and forgets the token.
func (i *Identity) SignOut(ctx context.Context) error {
	resp, err := i.c.request(ctx).Delete("/api/auth/session")
	i.c.setToken("")
	return check("sign out", resp, err)
}
