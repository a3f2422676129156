package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeRequired),
		errors.Is(err, domain.ErrInvalidIdentity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the only place a domain error becomes an HTTP response.
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"error": domain.UserMessage(err)}
	if status == http.StatusUnauthorized {
		body["redirect"] = string(domain.RouteLogin)
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}
