// Package auth verifies externally issued identity tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/semitha-uni-west/google-beet/internal/config"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Claims is the token payload issued by the identity service.
type Claims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 identity tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{secret: []byte(cfg.JWTSecret), parser: jwt.NewParser(opts...)}
}

// Verify returns the identity carried by token. Every failure wraps
// domain.ErrAuthenticationRequired.
func (v *Verifier) Verify(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrAuthenticationRequired
	}
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationRequired, err)
	}
	id, err := domain.NewIdentity(claims.Subject, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationRequired, err)
	}
	id.FullName = claims.UserMetadata.FullName
	id.AvatarURL = claims.UserMetadata.AvatarURL
	return id, nil
}

// Sign issues a token for id. Used by development tooling and tests; real
// tokens come from the identity service.
func Sign(secret string, id *domain.Identity, ttl time.Duration) (string, error) {
	if id == nil {
		return "", errors.New("sign: nil identity")
	}
	now := time.Now()
	claims := Claims{
		Email:        id.Email,
		UserMetadata: UserMetadata{FullName: id.FullName, AvatarURL: id.AvatarURL},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
