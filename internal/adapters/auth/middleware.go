package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

const (
	identityKey     = "beet.identity"
	sessionTokenKey = "access_token"
	queryTokenKey   = "access_token"
)

// tokenFrom looks at the Authorization header, then the cookie session, then
// the query string (browsers cannot set headers on websocket upgrades).
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		if t, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok && t != "" {
			return t
		}
	}
	return c.Query(queryTokenKey)
}

// Middleware resolves the caller's identity when a valid token is present.
// Requests without one pass through anonymous.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token != "" {
			id, err := v.Verify(token)
			if err != nil {
				log.Debug().Err(err).Str("module", "auth").Str("path", c.FullPath()).Msg("rejected token")
			} else {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*domain.Identity)
	return id, ok && id != nil
}

// RequireAuth answers 401 for anonymous API calls.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    domain.UserMessage(domain.ErrAuthenticationRequired),
				"redirect": string(domain.RouteLogin),
			})
			return
		}
		c.Next()
	}
}

// RequirePage redirects anonymous page loads to the login page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			c.Redirect(http.StatusFound, string(domain.RouteLogin))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StoreToken verifies token and keeps it in the cookie session.
func StoreToken(c *gin.Context, v *Verifier, token string) (*domain.Identity, error) {
	id, err := v.Verify(token)
	if err != nil {
		return nil, err
	}
	s := sessions.Default(c)
	s.Set(sessionTokenKey, token)
	if err := s.Save(); err != nil {
		return nil, err
	}
	return id, nil
}

func ClearToken(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(sessionTokenKey)
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}
