package core

import (
	"context"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// IdentityProvider resolves the authenticated caller.
// CurrentIdentity returns (nil, nil) for an anonymous caller.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*domain.Identity, error)
	SignOut(ctx context.Context) error
}
