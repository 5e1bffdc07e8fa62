package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/logger"
	"github.com/noah-isme/unihelp-api/pkg/response"
)

// ContextSessionKey is the gin context key storing session claims.
const ContextSessionKey = "currentSession"

type sessionAuthorizer interface {
	Authorize(ctx context.Context, token string) (*models.SessionClaims, error)
}

// Session protects routes by requiring a valid token of an open session, read from the
// session cookie or from a Bearer Authorization header.
func Session(authorizer sessionAuthorizer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := authorizer.Authorize(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Set(logger.ContextRegistrationKey, claims.RegistrationID)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid token is present but does not block.
func OptionalSession(authorizer sessionAuthorizer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := sessionToken(c, cookieName); token != "" {
			if claims, err := authorizer.Authorize(c.Request.Context(), token); err == nil {
				c.Set(ContextSessionKey, claims)
				c.Set(logger.ContextRegistrationKey, claims.RegistrationID)
			}
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
