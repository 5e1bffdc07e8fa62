package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/middleware"
	"github.com/noah-isme/unihelp-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(middleware.ContextSessionKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

func ownerFromClaims(claims *models.SessionClaims) models.SessionOwner {
	return models.SessionOwner{
		SessionID:      claims.SessionID,
		RegistrationID: claims.RegistrationID,
		DisplayName:    claims.FullName,
		Program:        claims.Program,
	}
}
